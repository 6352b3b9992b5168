// Command medisage is the reference frontend for the client core: it drives
// session, cache, upload workflow, and classification against a running
// MediSage service (or the labstub).
package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/medisage/medisage-client/internal/core/analysis"
	"github.com/medisage/medisage-client/internal/core/domain"
	"github.com/medisage/medisage-client/internal/core/ports"
	"github.com/medisage/medisage-client/internal/core/service"
	"github.com/medisage/medisage-client/internal/pkg/config"
	"github.com/medisage/medisage-client/internal/remote"
	"github.com/medisage/medisage-client/pkg/logger"
)

var (
	flagAPIBase  string
	flagTimeout  time.Duration
	flagLogLevel string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := newRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "medisage: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "medisage",
		Short:        "MediSage lab-report client",
		Long:         "MediSage CLI registers users, uploads lab reports, and shows the classified analysis returned by the extraction service.",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&flagAPIBase, "api-base", "", "Remote API base URL (overrides MEDISAGE_API_BASE)")
	cmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "HTTP timeout (overrides MEDISAGE_API_TIMEOUT)")
	cmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: trace, debug, info, warn, error")
	cmd.AddCommand(
		newUsersCmd(),
		newAllReportsCmd(),
		newRegisterCmd(),
		newLoginCmd(),
		newReportsCmd(),
		newUploadCmd(),
		newAnalyzeCmd(),
	)
	return cmd
}

func buildApp() *service.App {
	cfg := config.Load()
	if flagAPIBase != "" {
		cfg.API.BaseURL = flagAPIBase
	}
	if flagTimeout > 0 {
		cfg.API.Timeout = flagTimeout
	}
	if flagLogLevel != "" {
		cfg.LogLevel = flagLogLevel
	}

	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: true})
	client := remote.NewClient(cfg.API.BaseURL, cfg.API.Timeout, log)
	return service.NewApp(client, cfg.Upload.MaxBytes, log)
}

func newUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List registered users",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := buildApp()
			if err := app.Bootstrap(cmd.Context()); err != nil {
				return err
			}
			users := app.Cache.Users()
			if len(users) == 0 {
				fmt.Println("no registered users")
				return nil
			}
			for _, u := range users {
				fmt.Printf("%s  %-20s  %-12s  %s\n", u.UserID, u.Name, u.MobileNumber, u.Role)
			}
			return nil
		},
	}
}

func newAllReportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "all-reports",
		Short: "List every report on the service (doctor view)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := buildApp()
			if err := app.Bootstrap(cmd.Context()); err != nil {
				return err
			}
			reports := app.Cache.AllReports()
			if len(reports) == 0 {
				fmt.Println("no reports uploaded yet")
				return nil
			}
			byID := make(map[string]string, len(app.Cache.Users()))
			for _, u := range app.Cache.Users() {
				byID[u.UserID] = u.Name
			}
			for _, r := range reports {
				fmt.Printf("%s  %-20s  %-30s  %s  %s\n",
					r.ReportID, byID[r.UserID], r.FileName,
					r.UploadTime.Format("2006-01-02"), analysis.SummaryFlag(&r))
			}
			return nil
		},
	}
}

func newRegisterCmd() *cobra.Command {
	var name, mobile, role string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := buildApp()
			user, err := app.Session.Register(cmd.Context(), ports.RegisterInput{
				Name:         name,
				MobileNumber: mobile,
				Role:         role,
			})
			if err != nil {
				return fmt.Errorf("%s", domain.Reason(err))
			}
			fmt.Printf("registered %s (%s) with id %s\n", user.Name, user.Role, user.UserID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Full name")
	cmd.Flags().StringVar(&mobile, "mobile", "", "Mobile number (login key)")
	cmd.Flags().StringVar(&role, "role", domain.RolePatient, "Role: patient or doctor")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("mobile")
	return cmd
}

func newLoginCmd() *cobra.Command {
	var mobile string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Verify a login and show the account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := buildApp()
			user, err := app.Session.Login(cmd.Context(), mobile)
			if err != nil {
				return fmt.Errorf("%s", domain.Reason(err))
			}
			fmt.Printf("logged in as %s (%s), %d report(s) on file\n", user.Name, user.Role, len(app.Cache.UserReports()))
			return nil
		},
	}
	cmd.Flags().StringVar(&mobile, "mobile", "", "Mobile number")
	_ = cmd.MarkFlagRequired("mobile")
	return cmd
}

func newReportsCmd() *cobra.Command {
	var mobile string
	cmd := &cobra.Command{
		Use:   "reports",
		Short: "List the logged-in user's reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := buildApp()
			if _, err := app.Session.Login(cmd.Context(), mobile); err != nil {
				return fmt.Errorf("%s", domain.Reason(err))
			}
			reports := app.Cache.UserReports()
			if len(reports) == 0 {
				fmt.Println("no reports uploaded yet")
				return nil
			}
			for _, r := range reports {
				fmt.Printf("%s  %-30s  %s  %2d value(s)  %s\n",
					r.ReportID, r.FileName, r.UploadTime.Format("2006-01-02"),
					len(r.LabResults), analysis.SummaryFlag(&r))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&mobile, "mobile", "", "Mobile number")
	_ = cmd.MarkFlagRequired("mobile")
	return cmd
}

func newUploadCmd() *cobra.Command {
	var mobile, filePath string
	cmd := &cobra.Command{
		Use:   "upload",
		Short: "Upload a lab report (PDF/PNG/JPEG) and show its analysis",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := buildApp()
			user, err := app.Session.Login(cmd.Context(), mobile)
			if err != nil {
				return fmt.Errorf("%s", domain.Reason(err))
			}

			f, err := os.Open(filePath)
			if err != nil {
				return err
			}
			defer f.Close()
			info, err := f.Stat()
			if err != nil {
				return err
			}

			if err := app.Upload.SelectFile(ports.FileUpload{
				FileName:  filepath.Base(filePath),
				MediaType: mediaTypeForFile(filePath),
				Size:      info.Size(),
				Content:   f,
			}); err != nil {
				return err
			}

			report, err := app.Upload.Submit(cmd.Context(), user.UserID)
			if err != nil {
				return fmt.Errorf("%s", domain.Reason(err))
			}

			fmt.Printf("uploaded %s as report %s\n", report.FileName, report.ReportID)
			printAnalysis(report)
			return nil
		},
	}
	cmd.Flags().StringVar(&mobile, "mobile", "", "Mobile number")
	cmd.Flags().StringVar(&filePath, "file", "", "Path to the report document")
	_ = cmd.MarkFlagRequired("mobile")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newAnalyzeCmd() *cobra.Command {
	var mobile, reportID string
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Show the detailed analysis of an uploaded report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app := buildApp()
			if _, err := app.Session.Login(cmd.Context(), mobile); err != nil {
				return fmt.Errorf("%s", domain.Reason(err))
			}
			for _, r := range app.Cache.UserReports() {
				if r.ReportID == reportID {
					report := r
					app.Nav.SelectReport(&report)
					fmt.Printf("%s (uploaded %s)\n", report.FileName, report.UploadTime.Format(time.RFC3339))
					printAnalysis(&report)
					return nil
				}
			}
			return fmt.Errorf("report %s not found for this user", reportID)
		},
	}
	cmd.Flags().StringVar(&mobile, "mobile", "", "Mobile number")
	cmd.Flags().StringVar(&reportID, "report", "", "Report id (see the reports command)")
	_ = cmd.MarkFlagRequired("mobile")
	_ = cmd.MarkFlagRequired("report")
	return cmd
}

func printAnalysis(report *domain.Report) {
	if len(report.LabResults) == 0 {
		fmt.Println("no lab values could be extracted from this report")
		return
	}

	params := make([]string, 0, len(report.LabResults))
	for p := range report.LabResults {
		params = append(params, p)
	}
	sort.Strings(params)

	for _, param := range params {
		lr := report.LabResults[param]
		fmt.Printf("  %-6s %g %s [%s]\n", param, lr.Value, lr.Unit, lr.Status)
		if rng, ok := analysis.ReferenceRange(param); ok {
			fmt.Printf("         normal range: %s\n", rng)
		}
		fmt.Printf("         %s\n", analysis.Recommendation(param, lr.Status))
	}
	fmt.Printf("summary: %s\n", analysis.SummaryFlag(report))
}

// mediaTypeForFile maps the file extension to the declared media type sent
// to the workflow's pre-flight check.
func mediaTypeForFile(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return "application/pdf"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return mime.TypeByExtension(filepath.Ext(path))
	}
}
