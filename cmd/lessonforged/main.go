package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/lessonforge/lessonforge/internal/cli"
	"github.com/lessonforge/lessonforge/internal/cli/admin"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "lessonforged",
		Short: "LessonForge daemon and CLI",
		Long:  "LessonForge daemon for running the API server and managing document ingestion and topic generation",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.ProcessCmd())
	rootCmd.AddCommand(admin.ResetCmd())
	rootCmd.AddCommand(admin.TopicsCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
