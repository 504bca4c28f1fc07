package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/talentsift/resume-scorer/internal/documents"
	"github.com/talentsift/resume-scorer/internal/hashutil"
	"github.com/talentsift/resume-scorer/internal/models"
	"github.com/talentsift/resume-scorer/internal/services"
)

const (
	promptProcessFiles = "Process files"
	promptQuit         = "Quit"
	promptBack         = "back"
)

var errBack = errors.New("back requested")

var (
	scoreResumePaths    []string
	scoreJobDescription string
	scoreJobTitle       string
	scoreSkill          string
	scoreExplain        bool
	scoreDir            string
)

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score one or more resumes against a job description",
	Run: func(cmd *cobra.Command, _ []string) {
		runScore(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringArrayVarP(&scoreResumePaths, "resume", "r", nil, "path to a resume, repeatable; interactive picker when omitted")
	scoreCmd.Flags().StringVar(&scoreJobDescription, "job-description", "", "path to a job description file")
	scoreCmd.Flags().StringVar(&scoreJobTitle, "job-title", "", "job title to synthesize a description from when no file is given")
	scoreCmd.Flags().StringVar(&scoreSkill, "skill", "", "skill the scoring should weigh")
	scoreCmd.Flags().BoolVar(&scoreExplain, "explain", true, "include score explanations")
	scoreCmd.Flags().StringVar(&scoreDir, "dir", "", "directory the interactive picker lists documents from (default from config)")
}

func runScore(ctx context.Context) {
	zlog := newLogger()
	defer zlog.Sync()

	st, err := newStack(ctx, zlog)
	if err != nil {
		zlog.Fatal("initializing services", zap.Error(err))
	}

	opts := services.ScoreOptions{Skill: scoreSkill, Explain: scoreExplain}

	if len(scoreResumePaths) > 0 {
		jobDescription, err := jobDescriptionFromFlags(st)
		if err != nil {
			zlog.Fatal("resolving the job description", zap.Error(err))
		}
		if err := scoreFiles(ctx, st, jobDescription, scoreResumePaths, opts); err != nil {
			zlog.Fatal("scoring resumes", zap.Error(err))
		}
		return
	}

	if err := interactiveScore(ctx, st, opts, zlog); err != nil {
		zlog.Fatal("exiting", zap.Error(err))
	}
}

func jobDescriptionFromFlags(st *stack) (*documents.Document, error) {
	if scoreJobDescription != "" {
		return documents.NewJobDescriptionFromFile(scoreJobDescription, st.pdf), nil
	}
	if strings.TrimSpace(scoreJobTitle) != "" {
		return documents.NewJobDescriptionFromTitle(scoreJobTitle, st.generator), nil
	}
	return nil, errors.New("a --job-description file or a --job-title is required")
}

func scoreFiles(ctx context.Context, st *stack, jobDescription *documents.Document, paths []string, opts services.ScoreOptions) error {
	resumes := make([]*documents.Document, len(paths))
	for i, path := range paths {
		resumes[i] = documents.NewResumeFromFile(path, st.pdf)
	}

	outcomes, err := st.processor.Execute(ctx, jobDescription, resumes, opts)
	if err != nil {
		return err
	}

	for i, outcome := range outcomes {
		printOutcome(filepath.Base(paths[i]), resumes[i], outcome)
	}

	return nil
}

func printOutcome(name string, resume *documents.Document, outcome models.ResumeScoreOutcome) {
	if !outcome.Ok() {
		fmt.Printf("%s: %v\n", name, outcome.Err)
		return
	}

	score := outcome.Score
	score.Name = name
	if content, err := resume.Content(); err == nil {
		score.ID = hashutil.HashContent([]byte(content))
	}

	fmt.Printf("%s (id %s)\n", score.Name, score.ID)
	fmt.Printf("  ai score:  %s\n", formatValue(score.AIScore.Value))
	if score.AIScore.Explanation != "" {
		fmt.Printf("    %s\n", score.AIScore.Explanation)
	}
	fmt.Printf("  ats score: %s\n", formatValue(score.ATSScore.Value))
	if score.ATSScore.Explanation != "" {
		fmt.Printf("    %s\n", score.ATSScore.Explanation)
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// interactiveScore is the menu loop for scoring documents out of the scratch
// directory without flags.
func interactiveScore(ctx context.Context, st *stack, opts services.ScoreOptions, zlog *zap.Logger) error {
	dir := scoreDir
	if dir == "" {
		dir = st.cfg.Storage.ScratchDir
	}

	menu := promptui.Select{
		Label: "What next?",
		Items: []string{promptProcessFiles, promptQuit},
	}

	for {
		_, action, err := menu.Run()
		if err != nil {
			return err
		}
		if action == promptQuit {
			return nil
		}

		if err := scoreOnePick(ctx, st, dir, opts); err != nil {
			if errors.Is(err, errBack) {
				continue
			}
			zlog.Warn("scoring failed", zap.Error(err))
		}
	}
}

func scoreOnePick(ctx context.Context, st *stack, dir string, opts services.ScoreOptions) error {
	resumePath, err := pickDocument(dir, "Select a resume", []string{".pdf"})
	if err != nil {
		return err
	}

	jobDescription, err := jobDescriptionFromFlags(st)
	if err != nil {
		// Neither flag was given, pick a file instead.
		path, pickErr := pickDocument(dir, "Select a job description", []string{".md"})
		if pickErr != nil {
			return pickErr
		}
		jobDescription = documents.NewJobDescriptionFromFile(path, st.pdf)
	}

	return scoreFiles(ctx, st, jobDescription, []string{resumePath}, opts)
}

func pickDocument(dir, label string, extensions []string) (string, error) {
	files, err := listDocuments(dir, extensions)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("no %s files in %s", strings.Join(extensions, "/"), dir)
	}

	picker := promptui.Select{
		Label: label,
		Items: append(files, promptBack),
	}

	_, selected, err := picker.Run()
	if err != nil {
		return "", err
	}
	if selected == promptBack {
		return "", errBack
	}

	return filepath.Join(dir, selected), nil
}

func listDocuments(dir string, extensions []string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, allowed := range extensions {
			if ext == allowed {
				files = append(files, entry.Name())
				break
			}
		}
	}

	sort.Strings(files)
	return files, nil
}
