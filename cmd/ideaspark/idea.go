package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ideaspark/ideaspark/internal/ideas"
	"github.com/ideaspark/ideaspark/internal/store/schema"
	"github.com/ideaspark/ideaspark/internal/ui"
)

// maxIdeaTitle caps the title derived from a saved idea.
const maxIdeaTitle = 80

var ideaCmd = &cobra.Command{
	Use:     "idea <prompt>",
	GroupID: "ai",
	Short:   "Ask the AI model for an idea",
	Long: `Ask the configured Anthropic model for an idea and print it.

While the service is overloaded the request is retried with exponential
backoff (ai.max_retries attempts, starting at ai.initial_retry_delay).

With --save the idea is stored as a new task in the "ideas" category.

Examples:
  ideaspark idea "something fun to do this weekend"
  ideaspark idea "ide makan malam" --lang id
  ideaspark idea "a blog post topic" --context "I write about Go" --save`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := commandContext()
		defer cancel()

		lang, _ := cmd.Flags().GetString("lang")
		if lang == "" {
			lang = cfg.AI.Language
		}
		promptContext, _ := cmd.Flags().GetString("context")
		save, _ := cmd.Flags().GetBool("save")
		due, _ := cmd.Flags().GetString("due")

		gen, err := ideas.NewGenerator(ideas.Options{
			APIKey:            cfg.AI.APIKey,
			Model:             cfg.AI.Model,
			BaseURL:           cfg.AI.BaseURL,
			MaxTokens:         cfg.AI.MaxTokens,
			Temperature:       cfg.AI.Temperature,
			MaxRetries:        cfg.AI.MaxRetries,
			InitialRetryDelay: cfg.AI.InitialRetryDelay,
			Timeout:           cfg.AI.Timeout,
			Logger:            sink.Logger("ideas"),
		})
		if err != nil {
			fatal("%v", err)
		}

		text, err := gen.Generate(ctx, ideas.PromptInput{
			UserInput: strings.Join(args, " "),
			Language:  ideas.Language(lang),
			Context:   promptContext,
		})
		if err != nil {
			fatal("%v", err)
		}

		fmt.Println(ui.IdeaStyle.Render(text))

		if !save {
			return
		}

		dueDate, err := ui.ParseDueDate(due, time.Now())
		if err != nil {
			fatal("%v", err)
		}

		s := openStore(ctx)
		defer s.Close()

		task, err := s.CreateTask(ctx, schema.NewTask{
			Title:       ideaTitle(text),
			Description: text,
			DueDate:     dueDate,
			Category:    "ideas",
		})
		if err != nil {
			fatal("%v", err)
		}
		fmt.Printf("%s Saved as task %s\n", ui.SuccessStyle.Render("✓"), ui.ShortID(task.ID))
	},
}

// ideaTitle takes the first line of text, shortened to maxIdeaTitle runes.
func ideaTitle(text string) string {
	line := strings.TrimSpace(strings.SplitN(text, "\n", 2)[0])
	runes := []rune(line)
	if len(runes) <= maxIdeaTitle {
		return line
	}
	return strings.TrimSpace(string(runes[:maxIdeaTitle-1])) + "…"
}

func init() {
	ideaCmd.Flags().StringP("lang", "l", "", "Response language: en or id (default ai.language)")
	ideaCmd.Flags().String("context", "", "Extra context placed before the prompt")
	ideaCmd.Flags().Bool("save", false, "Save the idea as a task")
	ideaCmd.Flags().String("due", "tomorrow", "Due date for a saved idea")

	rootCmd.AddCommand(ideaCmd)
}
