package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crowdmarks/feature/board"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var boardLimit int

// boardCmd is the parent command for the discussion board.
var boardCmd = &cobra.Command{
	Use:   "board",
	Short: "Read and post discussion board messages",
}

var boardPostCmd = &cobra.Command{
	Use:   "post [text]",
	Short: "Post a message",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := boardService()
		if err != nil {
			return err
		}
		defer closeFn()

		id, err := svc.Post(context.Background(), strings.Join(args, " "))
		if err != nil {
			return err
		}
		fmt.Println(id)
		return nil
	},
}

var boardListCmd = &cobra.Command{
	Use:   "list",
	Short: "List messages, oldest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := boardService()
		if err != nil {
			return err
		}
		defer closeFn()

		msgs, err := svc.List(context.Background(), boardLimit)
		if err != nil {
			return err
		}
		for _, m := range msgs {
			ts := "pending"
			if !m.Timestamp.IsZero() {
				ts = m.Timestamp.Local().Format(time.DateTime)
			}
			fmt.Printf("[%s] %s\n", ts, m.Text)
		}
		return nil
	},
}

func boardService() (*board.Service, func(), error) {
	cfg, logg, err := loadRuntime()
	if err != nil {
		return nil, nil, err
	}

	fs, err := connectDocstore(context.Background(), cfg, logg)
	if err != nil {
		return nil, nil, err
	}

	svc := board.NewService(board.NewFirestoreStore(fs, cfg.Docstore.MessagesCollection), logg)
	return svc, func() {
		if err := fs.Close(); err != nil {
			logg.Warn("Failed to close document store", zap.Error(err))
		}
		_ = logg.Sync()
	}, nil
}

func init() {
	boardListCmd.Flags().IntVar(&boardLimit, "limit", 0, "Only the newest N messages")
	boardCmd.AddCommand(boardPostCmd, boardListCmd)
	RootCmd.AddCommand(boardCmd)
}
