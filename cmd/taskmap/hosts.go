package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bamsammich/taskmap/internal/transport/proto"
)

var hostsCmd = &cobra.Command{
	Use:   "hosts",
	Short: "List pinned daemon certificates",
	Long: `List the daemon addresses and certificate fingerprints recorded the
first time this client connected to them over TLS.`,
	Args: cobra.NoArgs,
	RunE: runHosts,
}

var hostsForgetCmd = &cobra.Command{
	Use:   "forget ADDR",
	Short: "Drop a pinned daemon certificate",
	Long: `Drop the fingerprint recorded for ADDR so the next connection trusts
whatever certificate the daemon presents. Use this after a daemon's
certificate was regenerated on purpose.`,
	Args: cobra.ExactArgs(1),
	RunE: runHostsForget,
}

func init() {
	hostsCmd.AddCommand(hostsForgetCmd)
}

func runHosts(cmd *cobra.Command, _ []string) error {
	kh, err := proto.LoadKnownHosts("")
	if err != nil {
		return fmt.Errorf("known hosts: %w", err)
	}
	out := cmd.OutOrStdout()
	hosts := kh.Hosts()
	if len(hosts) == 0 {
		fmt.Fprintf(out, "No pinned daemons in %s.\n", kh.Path())
		return nil
	}
	for _, host := range hosts {
		fp, _ := kh.Lookup(host)
		fmt.Fprintf(out, "%s\t%s\n", host, fp)
	}
	return nil
}

func runHostsForget(cmd *cobra.Command, args []string) error {
	kh, err := proto.LoadKnownHosts("")
	if err != nil {
		return fmt.Errorf("known hosts: %w", err)
	}
	if err := kh.Forget(args[0]); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Forgot %s.\n", args[0])
	return nil
}
