package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/JohanCodinha/ghsync/internal/model"
	"github.com/JohanCodinha/ghsync/internal/sync"
)

func outcome(success bool) string {
	if success {
		return color.New(color.FgGreen).Sprint("ok")
	}
	return color.New(color.FgRed).Sprint("completed with errors")
}

func errorMark() string {
	return color.New(color.FgRed).Sprint("✗")
}

func itemLocation(item sync.ItemError) string {
	var parts []string
	if item.RemoteNumber != nil {
		parts = append(parts, fmt.Sprintf("#%d", *item.RemoteNumber))
	}
	if item.LocalIssueID != "" {
		parts = append(parts, item.LocalIssueID)
	}
	return strings.Join(parts, " ")
}

func syncStatusLabel(s model.SyncStatus) string {
	switch s {
	case model.SyncSynced:
		return color.New(color.FgGreen).Sprint(string(s))
	case model.SyncPending:
		return color.New(color.FgYellow).Sprint(string(s))
	case model.SyncFailed:
		return color.New(color.FgRed).Sprint(string(s))
	default:
		return string(s)
	}
}

// issueLine is one row of 'issue list'.
func issueLine(issue model.Issue) string {
	number := "-"
	if issue.RemoteNumber != nil {
		number = fmt.Sprintf("#%d", *issue.RemoteNumber)
	}
	line := fmt.Sprintf("%-36s %-6s %-6s %s  %s",
		issue.ID, number, strings.ToLower(string(issue.Status)), syncStatusLabel(issue.SyncStatus), issue.Title)
	if labels := issue.LabelNames(); len(labels) > 0 {
		line += " [" + strings.Join(labels, ", ") + "]"
	}
	return line
}
