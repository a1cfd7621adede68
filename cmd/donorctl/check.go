package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	clientName    = "donorctl"
	clientVersion = "1.0.0"
)

// newCheckCmd runs the tool endpoint handshake an assistant client would:
// initialize, list the tools, then call validate.
func newCheckCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Verify the JSON-RPC tool endpoint",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client := opts.client()
			out := cmd.OutOrStdout()

			info, err := client.Initialize(cmd.Context(), clientName, clientVersion)
			if err != nil {
				return fmt.Errorf("initialize: %w", err)
			}
			fmt.Fprintf(out, "Server: %s %s (protocol %s)\n", info.ServerInfo.Name, info.ServerInfo.Version, info.ProtocolVersion)

			tools, err := client.ListTools(cmd.Context())
			if err != nil {
				return fmt.Errorf("list tools: %w", err)
			}
			fmt.Fprintf(out, "Tools (%d):\n", len(tools))
			for _, tool := range tools {
				fmt.Fprintf(out, "  - %s\n", tool.Name)
			}

			phone, err := client.CallTool(cmd.Context(), "validate", nil)
			if err != nil {
				return fmt.Errorf("validate: %w", err)
			}
			fmt.Fprintf(out, "Validation phone: %s\n", phone)
			return nil
		},
	}
}
