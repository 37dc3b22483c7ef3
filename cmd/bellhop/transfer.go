package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bellhop/bellhop/internal/config"
	"github.com/bellhop/bellhop/internal/db"
	"github.com/bellhop/bellhop/internal/session"
)

func newTransferCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Manage agent transfers",
	}

	cmd.AddCommand(newTransferCreateCmd())
	cmd.AddCommand(newTransferResumeCmd())
	cmd.AddCommand(newTransferListCmd())
	return cmd
}

func openStore(configPath string) (*session.Store, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	gormDB, err := db.Connect(cfg.Database.Host, cfg.Database.Port,
		cfg.Database.User, cfg.Database.Password, cfg.Database.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to %s: %w", cfg.Database.Database, err)
	}
	store, err := session.NewStore(gormDB)
	if err != nil {
		return nil, nil, err
	}
	return store, cfg, nil
}

func newTransferCreateCmd() *cobra.Command {
	var (
		configPath string
		agent      string
		notes      string
	)

	cmd := &cobra.Command{
		Use:   "create <phone>",
		Short: "Transfer a sender to a human agent",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := openStore(configPath)
			if err != nil {
				return err
			}
			transfer, err := store.TransferToAgent(args[0], cfg.Account, agent, notes)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Transferred %s to agent %q (since %s)\n",
				transfer.PhoneNumber, transfer.Agent, transfer.TransferredAt.Format("2006-01-02 15:04"))
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "bellhop.yaml", "path to Bellhop config file")
	cmd.Flags().StringVar(&agent, "agent", "", "agent identifier")
	cmd.Flags().StringVar(&notes, "notes", "", "handover notes")
	return cmd
}

func newTransferResumeCmd() *cobra.Command {
	var (
		configPath string
		actor      string
	)

	cmd := &cobra.Command{
		Use:   "resume <phone>",
		Short: "Resume automated handling for a sender",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := openStore(configPath)
			if err != nil {
				return err
			}
			resumed, err := store.ResumeChatbot(args[0], cfg.Account, actor)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !resumed {
				fmt.Fprintf(out, "No active transfer for %s\n", args[0])
				return nil
			}
			fmt.Fprintf(out, "Chatbot resumed for %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "bellhop.yaml", "path to Bellhop config file")
	cmd.Flags().StringVar(&actor, "by", "", "who resumed the conversation")
	return cmd
}

func newTransferListCmd() *cobra.Command {
	var (
		configPath string
		agent      string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active agent transfers",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, cfg, err := openStore(configPath)
			if err != nil {
				return err
			}
			transfers, err := store.ActiveTransfers(cfg.Account, agent)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(transfers) == 0 {
				fmt.Fprintln(out, "No active transfers.")
				return nil
			}
			for _, t := range transfers {
				fmt.Fprintf(out, "%s  agent=%q  since=%s", t.PhoneNumber, t.Agent,
					t.TransferredAt.Format("2006-01-02 15:04"))
				if t.Notes != "" {
					fmt.Fprintf(out, "  notes=%q", t.Notes)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "bellhop.yaml", "path to Bellhop config file")
	cmd.Flags().StringVar(&agent, "agent", "", "filter by agent")
	return cmd
}
