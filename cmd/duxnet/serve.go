package duxnet

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/duxnet-project/duxnet/pkg/node"
	"github.com/duxnet-project/duxnet/pkg/publicapi"
	"github.com/duxnet-project/duxnet/pkg/system"
)

var hostAddress string
var hostPort int
var nodeID string
var nodeDID string
var feeRate string
var distributionInterval time.Duration
var peerConnect []string

var DefaultAPIPort = 8080

func init() { //nolint:gochecknoinits // Using init in cobra command is idiomatic
	serveCmd.PersistentFlags().StringVar(
		&hostAddress, "host", "0.0.0.0",
		`The host to listen on for API connections.`,
	)
	serveCmd.PersistentFlags().IntVar(
		&hostPort, "port", DefaultAPIPort,
		`The port to listen on for API connections.`,
	)
	serveCmd.PersistentFlags().StringVar(
		&nodeID, "node-id", "",
		`The node's identifier; generated when empty.`,
	)
	serveCmd.PersistentFlags().StringVar(
		&nodeDID, "did", "",
		`The node's DID; derived from the node id when empty.`,
	)
	serveCmd.PersistentFlags().StringVar(
		&feeRate, "fee-rate", "",
		`The community fund's cut of escrow releases (e.g. 0.05).`,
	)
	serveCmd.PersistentFlags().DurationVar(
		&distributionInterval, "distribution-interval", 0,
		`How often the community fund pays out to active identities.`,
	)
	serveCmd.PersistentFlags().StringSliceVar(
		&peerConnect, "peer", nil,
		`Known peer addresses to seed the peer table with, as id@host:port.`,
	)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the duxnet marketplace node",
	RunE: func(cmd *cobra.Command, args []string) error {
		// Cleanup manager ensures that resources are freed before exiting:
		cm := system.NewCleanupManager()
		defer cm.Cleanup()

		config := node.Config{
			NodeID:               nodeID,
			DID:                  nodeDID,
			DistributionInterval: distributionInterval,
		}
		if feeRate != "" {
			rate, err := decimal.NewFromString(feeRate)
			if err != nil {
				return fmt.Errorf("fee-rate must be a decimal fraction: %w", err)
			}
			config.FeeRate = rate
		}

		ctx := context.Background()
		n, err := node.NewStandardNode(ctx, cm, config)
		if err != nil {
			return err
		}

		for _, peer := range peerConnect {
			id, address, found := strings.Cut(peer, "@")
			if !found {
				return fmt.Errorf("peer %q must be of the form id@host:port", peer)
			}
			n.Peers.Touch(id, address)
		}

		log.Info().
			Str("NodeID", n.NodeID).
			Str("DID", n.DID).
			Msgf("starting node on %s:%d", hostAddress, hostPort)

		server := publicapi.NewServer(hostAddress, hostPort, n)
		return server.ListenAndServe(ctx, cm)
	},
}
