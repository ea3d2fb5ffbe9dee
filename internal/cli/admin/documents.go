package admin

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lessonforge/lessonforge/internal/config"
)

// ProcessCmd returns the process command
func ProcessCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "process <document-id>",
		Short: "Run the ingestion pipeline for one document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				documentID, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid document id %q", args[0])
				}

				if err := a.processing.ProcessDocument(ctx, documentID); err != nil {
					return err
				}

				doc, err := a.documents.GetWithCourse(ctx, documentID)
				if err != nil {
					return err
				}
				fmt.Printf("document %d: %s", documentID, doc.Status)
				if doc.FailedReason != "" {
					fmt.Printf(" (%s)", doc.FailedReason)
				}
				fmt.Println()
				return nil
			})
		},
	}
}

// ResetCmd returns the reset command
func ResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <document-id>",
		Short: "Reset a document stuck in Processing back to Pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				documentID, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid document id %q", args[0])
				}

				if err := a.processing.ResetToPending(ctx, documentID); err != nil {
					return err
				}
				fmt.Printf("document %d reset to Pending\n", documentID)
				return nil
			})
		},
	}
}

// TopicsCmd returns the topics command
func TopicsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "topics <course-id>",
		Short: "Generate study topics for a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *app) error {
				courseID, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid course id %q", args[0])
				}
				owner, _ := cmd.Flags().GetString("owner")
				if owner == "" {
					return fmt.Errorf("--owner is required")
				}

				topics, err := a.topicSvc.GenerateTopics(ctx, courseID, owner)
				if err != nil {
					return err
				}

				for _, topic := range topics {
					fmt.Printf("%d\t%s\t(confidence %.2f, %d chunks)\n",
						topic.ID, topic.Title, topic.Confidence, len(topic.Chunks))
				}
				return nil
			})
		},
	}
	cmd.Flags().String("owner", "", "Owner ID of the course")
	return cmd
}

// withApp loads configuration, wires the application, runs fn, and
// tears everything down again.
func withApp(ctx context.Context, fn func(context.Context, *app) error) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}
