// Package insights loads curated Twitter DeFi commentary from Postgres and
// renders it as a knowledge document for the specialist agent.
package insights

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"brother-yield/internal/logger"
)

// TwitterInsight is one analyzed tweet. Sentiment is stored as a float in
// the database and scaled by 100 here to preserve two decimal places as an
// integer.
type TwitterInsight struct {
	TweetText         string    `db:"tweet_text"`
	Author            string    `db:"author"`
	Timestamp         time.Time `db:"timestamp"`
	StrategyType      string    `db:"strategy_type"`
	ProtocolMentioned string    `db:"protocol_mentioned"`
	Sentiment         int       `db:"-"`
	EngagementScore   int       `db:"engagement_score"`
}

type insightRow struct {
	TweetText         string    `db:"tweet_text"`
	Author            string    `db:"author"`
	Timestamp         time.Time `db:"timestamp"`
	StrategyType      string    `db:"strategy_type"`
	ProtocolMentioned string    `db:"protocol_mentioned"`
	Sentiment         float64   `db:"sentiment"`
	EngagementScore   int       `db:"engagement_score"`
}

// Service reads insights collected by the scraper pipeline.
type Service struct {
	db *sqlx.DB
}

// Connect opens the insights database. The DSN comes from configuration;
// managed Postgres providers want sslmode=require in it.
func Connect(dsn string) (*Service, error) {
	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect insights db: %w", err)
	}
	return &Service{db: db}, nil
}

func (s *Service) Close() error { return s.db.Close() }

// Load reads every stored insight.
func (s *Service) Load(ctx context.Context) ([]TwitterInsight, error) {
	var rows []insightRow
	if err := s.db.SelectContext(ctx, &rows,
		`SELECT tweet_text, author, timestamp, strategy_type, protocol_mentioned, sentiment, engagement_score
		 FROM twitter_defi_insights`,
	); err != nil {
		return nil, fmt.Errorf("query insights: %w", err)
	}

	out := make([]TwitterInsight, 0, len(rows))
	for _, r := range rows {
		out = append(out, TwitterInsight{
			TweetText:         r.TweetText,
			Author:            r.Author,
			Timestamp:         r.Timestamp,
			StrategyType:      r.StrategyType,
			ProtocolMentioned: r.ProtocolMentioned,
			Sentiment:         int(r.Sentiment * 100.0),
			EngagementScore:   r.EngagementScore,
		})
	}

	logger.L().Infow("loaded insights from database", "count", len(out))
	return out, nil
}

// FormatInsights renders insights as the markdown context document injected
// into the specialist's preamble.
func FormatInsights(insights []TwitterInsight) string {
	var b strings.Builder
	b.WriteString("## Latest Twitter Starknet DeFi Insights Context\n\n")

	for i, insight := range insights {
		fmt.Fprintf(&b, "### Insight %d\n", i+1)
		fmt.Fprintf(&b, "**Author:** @%s\n", insight.Author)
		fmt.Fprintf(&b, "**Time:** %s\n", insight.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC"))
		fmt.Fprintf(&b, "**Strategy:** %s\n", insight.StrategyType)
		fmt.Fprintf(&b, "**Protocol:** %s\n", insight.ProtocolMentioned)
		fmt.Fprintf(&b, "**Sentiment Score:** %d\n", insight.Sentiment)
		fmt.Fprintf(&b, "**Engagement Score:** %d\n", insight.EngagementScore)
		fmt.Fprintf(&b, "**Tweet:** %s\n\n", insight.TweetText)
		b.WriteString("---\n\n")
	}

	b.WriteString("## Summary Statistics\n")
	fmt.Fprintf(&b, "Total Insights: %d\n", len(insights))

	if len(insights) > 0 {
		sumSentiment := 0
		totalEngagement := 0
		for _, insight := range insights {
			sumSentiment += insight.Sentiment
			totalEngagement += insight.EngagementScore
		}
		fmt.Fprintf(&b, "Average Sentiment: %d\n", sumSentiment/len(insights))
		fmt.Fprintf(&b, "Total Engagement: %d\n", totalEngagement)
	}

	return b.String()
}
