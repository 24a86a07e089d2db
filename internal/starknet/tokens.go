package starknet

// Token is a verified asset on Starknet mainnet. Value type, comparable,
// usable as a map key.
type Token struct {
	Name            string
	ContractAddress string
}

// TokenGroup is a set of tokens sharing one fixed decimal precision. The
// group is the concurrency unit for portfolio fetches: groups run in
// parallel, reads inside a group stay sequential.
type TokenGroup struct {
	Decimals int
	Tokens   []Token
}

// Well-known contract addresses used by the market data layer.
const (
	AddressBROTHER = "0x03b405a98c9e795d427fe82cdeeeed803f221b52471e3a757574a2b4180793ee"
	AddressSTRK    = "0x04718f5a0fc34cc1af16a1cdee98ffb20c31f5cd61d6ab07201858f4287c938d"
	AddressETH     = "0x049d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7"
	AddressUSDC    = "0x053c91253bc9682c04929ca02ed00b3e423f6710d2ee7e0d5ebb06f3ecf368a8"
)

// VerifiedTokenGroups returns the mainnet token registry partitioned by
// decimal class.
func VerifiedTokenGroups() []TokenGroup {
	return []TokenGroup{
		{
			Decimals: 6,
			Tokens: []Token{
				{Name: "SWAY", ContractAddress: "0x004878d1148318a31829523ee9c6a5ee563af6cd87f90a30809e5b0d27db8a9b"},
				{Name: "USDC", ContractAddress: AddressUSDC},
				{Name: "USDT", ContractAddress: "0x068f5c6a61780768455de69077e07e89787839bf8166decfbf92b645209c0fb8"},
			},
		},
		{
			Decimals: 8,
			Tokens: []Token{
				{Name: "WBTC", ContractAddress: "0x03fe2b97c1fd336e750087d68b9b867997fd64a2661ff3ca5a7c771641e8e7ac"},
			},
		},
		{
			Decimals: 18,
			Tokens: []Token{
				{Name: "EIGHT", ContractAddress: "0x00e33356072418951fdf3312e3e2eef99abf6d7e12df6ff956082d3e178dde2a"},
				{Name: "BROTHER", ContractAddress: AddressBROTHER},
				{Name: "AKU", ContractAddress: "0x0137dfca7d96cdd526d13a63176454f35c691f55837497448fad352643cfe4d4"},
				{Name: "DAI", ContractAddress: "0x05574eb6b8789a91466f902c380d978e472db68170ff82a5b650b95a58ddf4ad"},
				{Name: "DAIv0", ContractAddress: "0x00da114221cb83fa859dbdb4c44beeaa0bb37c7537ad5ae66fe5e0efd20e6eb3"},
				{Name: "EKUBO", ContractAddress: "0x075afe6402ad5a5c20dd25e10ec3b3986acaa647b77e4ae24b0cbc9a54a27a87"},
				{Name: "ETH", ContractAddress: AddressETH},
				{Name: "LORDS", ContractAddress: "0x0124aeb495b947201f5fac96fd1138e326ad86195b98df6dec9009158a533b49"},
				{Name: "LUSD", ContractAddress: "0x070a76fd48ca0ef910631754d77dd822147fe98a569b826ec85e3c33fde586ac"},
				{Name: "NSTR", ContractAddress: "0x00c530f2c0aa4c16a0806365b0898499fba372e5df7a7172dc6fe9ba777e8007"},
				{Name: "OWL", ContractAddress: "0x039877a272619050ab8b0e3e0a19b58d076fc2ce84da1dc73b699590e629f2b8"},
				{Name: "PAL", ContractAddress: "0x049201f03a0f0a9e70e28dcd74cbf44931174dbe3cc4b2ff488898339959e559"},
				{Name: "rETH", ContractAddress: "0x0319111a5037cbec2b3e638cc34a3474e2d2608299f3e62866e9cc683208c610"},
				{Name: "SPEPE", ContractAddress: "0x01e0eee22c684fdf32babdd65e6bcca62a8ce2c23c8d5e68f3989595d26e1b4a"},
				{Name: "STRK", ContractAddress: AddressSTRK},
				{Name: "UNI", ContractAddress: "0x049210ffc442172463f3177147c1aeaa36c51d152c1b0630f2364c300d4f48ee"},
				{Name: "vSTRK", ContractAddress: "0x0782f0ddca11d9950bc3220e35ac82cf868778edb67a5e58b39838544bc4cd0f"},
				{Name: "wstETH", ContractAddress: "0x042b8f0484674ca266ac5d08e4ac6a3fe65bd3129795def2dca5c34ecc5f96d2"},
			},
		},
	}
}
