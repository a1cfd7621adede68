// Command donorctl is a terminal client for the blood donor registry API.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/zatekoja/blooddonorconnect/backend/internal/domain/entities"
	"github.com/zatekoja/blooddonorconnect/backend/internal/infrastructure/clients/donorapi"
	apperrors "github.com/zatekoja/blooddonorconnect/backend/pkg/errors"
)

const defaultServer = "http://localhost:8080"

// globalOptions are the persistent flags shared by every subcommand.
type globalOptions struct {
	server  string
	timeout time.Duration
}

func (o *globalOptions) client() *donorapi.Client {
	return donorapi.NewClient(o.server, o.timeout)
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "donorctl",
		Short: "Query and update the blood donor registry",
		Long: `donorctl talks to a running blood donor registry server.

It can browse the hospital directory, register donors, look up
donors near a hospital and file emergency blood requests.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	server := os.Getenv("DONOR_API_URL")
	if server == "" {
		server = defaultServer
	}
	rootCmd.PersistentFlags().StringVar(&opts.server, "server", server, "Registry server URL (or set DONOR_API_URL)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		newFacilitiesCmd(opts),
		newResolveCmd(opts),
		newRegionsCmd(opts),
		newRegisterCmd(opts),
		newNearbyCmd(opts),
		newEmergencyCmd(opts),
		newDonorsCmd(opts),
		newRequestsCmd(opts),
		newSeedCmd(opts),
		newCheckCmd(opts),
	)
	return rootCmd
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rootCmd := newRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		printError(rootCmd.ErrOrStderr(), err)
		os.Exit(1)
	}
}

// printError writes err with whatever remediation the server attached.
func printError(w io.Writer, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(w, "Error: %s\n", appErr.Message)
	switch appErr.Type {
	case apperrors.ErrorTypeAmbiguous:
		fmt.Fprintln(w, "Candidates:")
		for _, c := range candidateNames(appErr.Details) {
			fmt.Fprintf(w, "  - %s\n", c)
		}
	case apperrors.ErrorTypeNotFound, apperrors.ErrorTypeValidation:
		if names := stringList(appErr.Details); len(names) > 0 {
			fmt.Fprintf(w, "Accepted: %s\n", strings.Join(names, ", "))
		}
	}
}

// candidateNames renders the facility list of an ambiguous lookup. The
// details arrive as decoded JSON, so each element is a generic map.
func candidateNames(details interface{}) []string {
	items, _ := details.([]interface{})
	names := make([]string, 0, len(items))
	for _, item := range items {
		m, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		name, _ := m["name"].(string)
		region, _ := m["region"].(string)
		names = append(names, fmt.Sprintf("%s (%s)", name, region))
	}
	return names
}

func stringList(details interface{}) []string {
	items, _ := details.([]interface{})
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func bloodTypeUsage() string {
	return "Blood type (" + strings.Join(entities.BloodTypeNames(), ", ") + ")"
}
