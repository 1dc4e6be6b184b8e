package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"fanlink/internal/node"
)

func runDescribe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// The descriptor is static output, keep the log channel quiet
	n, err := node.New(cfg, zerolog.Nop())
	if err != nil {
		return err
	}
	defer n.Close()

	out, err := json.MarshalIndent(n.Descriptor(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(os.Stdout, string(out))
	return nil
}
