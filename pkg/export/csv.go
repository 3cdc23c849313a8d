package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
)

var experienceHeader = []string{
	"episode", "issue_type", "strategy", "response_content",
	"total_reward", "is_violation", "blocked", "gateway_fallback",
	"issue_resolved", "customer_rating",
}

// WriteCSV writes the snapshot's experience log as a flat, BOM-prefixed
// CSV file, one row per episode. The config and statistics are not
// represented in row form; callers that need them should also call
// WriteJSON.
func WriteCSV(outputPath string, snap Snapshot) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	defer file.Close()

	if _, err := file.WriteString(byteOrderMark); err != nil {
		return fmt.Errorf("write byte-order mark: %w", err)
	}

	w := csv.NewWriter(file)
	if err := w.Write(experienceHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, exp := range snap.Experiences {
		issueResolved, customerRating := "", ""
		if exp.Outcome != nil {
			issueResolved = strconv.FormatBool(exp.Outcome.IssueResolved)
			customerRating = strconv.Itoa(exp.Outcome.CustomerRating)
		}
		row := []string{
			strconv.Itoa(exp.Episode),
			string(exp.Issue.Type),
			string(exp.Strategy),
			exp.Response.Content,
			strconv.FormatFloat(exp.TotalReward, 'f', -1, 64),
			strconv.FormatBool(exp.IsViolation),
			strconv.FormatBool(exp.Blocked),
			strconv.FormatBool(exp.GatewayFallback),
			issueResolved,
			customerRating,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("write row for episode %d: %w", exp.Episode, err)
		}
	}

	w.Flush()
	return w.Error()
}
