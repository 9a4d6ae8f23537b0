package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/feichai0017/docprep/config"
	"github.com/feichai0017/docprep/internal/models"
	"github.com/feichai0017/docprep/internal/service/casepkg"
	"github.com/feichai0017/docprep/internal/settings"
	"github.com/feichai0017/docprep/internal/templates"
	"github.com/feichai0017/docprep/pkg/logger"
)

var (
	flagFolder   string
	flagBank     string
	flagSigna    bool
	flagMerge    bool
	flagBase     bool
	flagNaming   string
	flagPDF      string
	flagVerbose  bool
	flagSettings string
)

var rootCmd = &cobra.Command{
	Use:   "docprep",
	Short: "Prepare bankruptcy claim document packages",
	Long: `docprep unpacks a dossier archive, consolidates obligation folders
and applies the statement editing pipeline to the claim document.

Available commands:
  form    - full run: unpack the dossier and process the statement
  insert  - place a late claim document into an unpacked dossier
  unpack  - unpack the dossier without a claim document
  check   - cross-check claim facts against the publication PDF
  banks   - list bank names available in the requisites template`,
	SilenceUsage: true,
}

var formCmd = &cobra.Command{
	Use:   "form",
	Short: "Unpack the dossier and process the claim document",
	RunE:  runForm,
}

var insertCmd = &cobra.Command{
	Use:   "insert",
	Short: "Insert a late claim document into an unpacked dossier",
	RunE:  runInsert,
}

var unpackCmd = &cobra.Command{
	Use:   "unpack",
	Short: "Unpack the dossier archive without a claim document",
	RunE:  runUnpack,
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Cross-check the claim document against the publication PDF",
	RunE:  runCheck,
}

var banksCmd = &cobra.Command{
	Use:   "banks",
	Short: "List bank names from the requisites template",
	RunE:  runBanks,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagSettings, "settings", "", "settings file path (default from environment)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	for _, cmd := range []*cobra.Command{formCmd, insertCmd, unpackCmd, checkCmd} {
		cmd.Flags().StringVarP(&flagFolder, "folder", "f", "", "working folder (default from settings)")
	}
	checkCmd.Flags().StringVar(&flagPDF, "pdf", "", "publication PDF path")
	_ = checkCmd.MarkFlagRequired("pdf")
	for _, cmd := range []*cobra.Command{formCmd, insertCmd} {
		cmd.Flags().StringVar(&flagBank, "bank", "", "bank name for the requisites table")
		cmd.Flags().BoolVar(&flagSigna, "signature", false, "insert the signature image")
		cmd.Flags().BoolVar(&flagMerge, "merge", false, "merge obligation folder contents")
		cmd.Flags().BoolVar(&flagBase, "base", false, "keep an unedited copy of the statement")
		cmd.Flags().StringVar(&flagNaming, "naming", string(models.NamingCaseDebtor), "case folder naming: case_debtor, arbitr_debtor or a_debtor")
	}

	rootCmd.AddCommand(formCmd, insertCmd, unpackCmd, checkCmd, banksCmd)
}

func newEnv() (casepkg.PackageService, *settings.Store, error) {
	cfg := config.GetAppConfig()

	level := "warn"
	if flagVerbose {
		level = "debug"
	}
	log, err := logger.NewLogger(
		logger.WithLevel(level),
		logger.WithEncoding("console"),
		logger.WithOutputPaths([]string{"stderr"}),
	)
	if err != nil {
		return nil, nil, err
	}

	settingsPath := cfg.SettingsFile
	if flagSettings != "" {
		settingsPath = flagSettings
	}
	store := settings.NewStore(settingsPath)
	provider := templates.NewProvider(cfg.TemplatesDir)
	return casepkg.NewService(provider, log), store, nil
}

func resolveFolder(store *settings.Store) (string, error) {
	if flagFolder != "" {
		return flagFolder, nil
	}
	if dir := store.WorkDirectory(); dir != "" {
		return dir, nil
	}
	return "", fmt.Errorf("no working folder: pass --folder or set %s in the settings file", settings.KeyWorkDirectory)
}

func pipelineConfig() models.PipelineConfig {
	return models.PipelineConfig{
		ArbiterNaming:     models.ArbiterNaming(flagNaming),
		MergeObligations:  flagMerge,
		InsertSignature:   flagSigna,
		SaveBaseStatement: flagBase,
		BankName:          flagBank,
	}
}

func printResult(res *models.PackageResult) {
	if res == nil {
		return
	}
	if res.Facts.DebtorName != "" {
		fmt.Printf("Должник:    %s\n", res.Facts.DebtorName)
		fmt.Printf("Дело:       %s\n", res.Facts.CaseNumber)
	}
	if res.ArbiterPath != "" {
		fmt.Printf("Папка дела: %s\n", res.ArbiterPath)
	} else if res.DossierPath != "" {
		fmt.Printf("Папка дела: %s\n", res.DossierPath)
	}
	for _, step := range res.Steps {
		switch step.Status {
		case models.StepDone:
			fmt.Printf("  [ok]   %s\n", step.Name)
		case models.StepSkipped:
			fmt.Printf("  [skip] %s: %s\n", step.Name, step.Error)
		case models.StepFailed:
			fmt.Printf("  [fail] %s: %s\n", step.Name, step.Error)
		}
	}
}

func runForm(cmd *cobra.Command, args []string) error {
	service, store, err := newEnv()
	if err != nil {
		return err
	}
	folder, err := resolveFolder(store)
	if err != nil {
		return err
	}

	res, err := service.FormPackage(cmd.Context(), folder, pipelineConfig())
	printResult(res)
	return err
}

func runInsert(cmd *cobra.Command, args []string) error {
	service, store, err := newEnv()
	if err != nil {
		return err
	}
	folder, err := resolveFolder(store)
	if err != nil {
		return err
	}

	res, err := service.InsertStatement(cmd.Context(), folder, pipelineConfig())
	printResult(res)
	return err
}

func runUnpack(cmd *cobra.Command, args []string) error {
	service, store, err := newEnv()
	if err != nil {
		return err
	}
	folder, err := resolveFolder(store)
	if err != nil {
		return err
	}

	res, err := service.UnpackNoStatement(cmd.Context(), folder)
	printResult(res)
	return err
}

func runCheck(cmd *cobra.Command, args []string) error {
	service, store, err := newEnv()
	if err != nil {
		return err
	}
	folder, err := resolveFolder(store)
	if err != nil {
		return err
	}

	results, err := service.CheckPublication(cmd.Context(), folder, flagPDF)
	if err != nil {
		return err
	}
	for field, result := range results {
		fmt.Printf("%-14s %s\n", field, result)
	}
	return nil
}

func runBanks(cmd *cobra.Command, args []string) error {
	service, _, err := newEnv()
	if err != nil {
		return err
	}
	banks, err := service.Banks()
	if err != nil {
		return err
	}
	for _, name := range banks {
		fmt.Println(name)
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
