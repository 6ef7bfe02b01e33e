package query

import (
	"context"
	"fmt"
	"time"
)

// bucketExprFor returns the Cypher expression truncating a commit's ISO-8601
// timestamp string down to the requested granularity. Week buckets align to
// the Monday of each ISO week using Cypher's built-in date arithmetic;
// everything else is a plain substring truncation, avoiding an APOC
// dependency for date handling.
func bucketExprFor(granularity string) string {
	switch granularity {
	case "hour":
		return "substring(c.timestamp, 0, 13)"
	case "week":
		return "toString(date(datetime(c.timestamp)) - duration({days: date(datetime(c.timestamp)).dayOfWeek - 1}))"
	case "month":
		return "substring(c.timestamp, 0, 7)"
	case "year":
		return "substring(c.timestamp, 0, 4)"
	default:
		return "substring(c.timestamp, 0, 10)" // day
	}
}

// CommitsBuckets implements the commits_buckets(granularity, from?, to?,
// max_buckets) contract (§4.8): commit counts grouped into fixed-width time
// buckets, capped at max_buckets (earliest buckets win on overflow, the same
// "oldest observed state wins" posture the incremental ingester takes).
func (l *Layer) CommitsBuckets(ctx context.Context, granularity, from, to string, maxBuckets int) (Buckets, error) {
	if err := l.throttle.wait(ctx); err != nil {
		return Buckets{}, err
	}
	if maxBuckets <= 0 || maxBuckets > 10000 {
		maxBuckets = 500
	}

	key := fmt.Sprintf("buckets:%s:%s:%s:%d", granularity, from, to, maxBuckets)
	if cached, ok := l.cache.get(key); ok {
		b := cached.(Buckets)
		b.Performance.CacheHit = true
		l.telemetry.record("commits_buckets", 0, true)
		return b, nil
	}

	start := time.Now()
	query := fmt.Sprintf(`
		MATCH (c:GitCommit)
		WHERE ($from = '' OR c.timestamp >= $from) AND ($to = '' OR c.timestamp <= $to)
		WITH %s AS bucket
		RETURN bucket AS ts, count(*) AS count
		ORDER BY ts
		LIMIT $maxBuckets
	`, bucketExprFor(granularity))

	rows, err := l.backend.Query(ctx, query, map[string]any{"from": from, "to": to, "maxBuckets": maxBuckets})
	if err != nil {
		return Buckets{}, fmt.Errorf("query commits_buckets: %w", err)
	}

	buckets := make([]Bucket, 0, len(rows))
	for _, row := range rows {
		buckets = append(buckets, Bucket{TS: asBucketString(row["ts"]), Count: asBucketInt(row["count"])})
	}

	b := Buckets{Buckets: buckets, Performance: Performance{DurationMS: time.Since(start).Milliseconds()}}
	l.cache.set(key, b)
	l.telemetry.record("commits_buckets", time.Since(start), false)
	return b, nil
}

func asBucketString(v any) string {
	s, _ := v.(string)
	return s
}

func asBucketInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case float64:
		return int(n)
	default:
		return 0
	}
}
