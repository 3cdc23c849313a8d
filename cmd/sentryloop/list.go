package main

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"time"

	httpclient "github.com/shieldloop/sentryloop/pkg/lib/http"
)

// ListCmd queries a running Control API for every known experiment.
type ListCmd struct {
	Addr string `help:"Control API address." default:"http://localhost:8080" name:"addr"`
}

type experimentSummary struct {
	UUID           string `json:"uuid"`
	Name           string `json:"name"`
	Status         string `json:"status"`
	CurrentEpisode int    `json:"current_episode"`
	TotalEpisodes  int    `json:"total_episodes"`
}

func (l *ListCmd) Run() error {
	client := httpclient.NewClient(
		httpclient.WithBaseURL(l.Addr),
		httpclient.WithTimeout(10*time.Second),
		httpclient.WithUserAgent("sentryloop-cli"),
	)

	resp, err := client.Get(context.Background(), "/experiments")
	if err != nil {
		return fmt.Errorf("internal: reach control API at %s: %w", l.Addr, err)
	}

	if resp.StatusCode != stdhttp.StatusOK {
		return fmt.Errorf("internal: control API returned status %d", resp.StatusCode)
	}

	var summaries []experimentSummary
	if err := resp.JSON(&summaries); err != nil {
		return fmt.Errorf("internal: decode response: %w", err)
	}

	if len(summaries) == 0 {
		fmt.Println("No experiments.")
		return nil
	}

	fmt.Printf("%-36s  %-20s  %-10s  %s\n", "UUID", "NAME", "STATUS", "PROGRESS")
	for _, s := range summaries {
		fmt.Printf("%-36s  %-20s  %-10s  %d/%d\n", s.UUID, s.Name, s.Status, s.CurrentEpisode, s.TotalEpisodes)
	}
	return nil
}
