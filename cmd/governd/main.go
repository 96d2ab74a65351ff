// Copyright (C) 2026 Relasi4Warna (bimsrama@relasi4warna.id)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Command governd starts the content governance daemon.
//
// governd screens user-submitted and AI-generated text for the
// relasi4warna platform: keyword scanning, risk scoring, automated
// disposition against the policy table, a human moderation queue, and
// an append-only audit log.
//
// Usage:
//
//	governd serve
//	governd serve --listen :8085 --data-dir /var/lib/governd
//	governd serve --policy /etc/governd/policy.yaml --watch-policy
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8085/health
//
//	# Evaluate a comment
//	curl -X POST http://localhost:8085/v1/evaluate \
//	  -H "Content-Type: application/json" \
//	  -d '{"text": "halo dunia", "language": "id", "content_type": "blog_comment"}'
//
//	# List the pending review queue
//	curl http://localhost:8085/v1/queue?status=pending
package main

import (
	"log"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "governd",
	Short: "Content governance daemon for relasi4warna",
	Long: `governd evaluates user-submitted and AI-generated content,
routes risky content to a human moderation queue, and keeps an
append-only audit trail of every disposition.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("Error executing command: %v", err)
	}
}
