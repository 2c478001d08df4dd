/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>

*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/mautops/dailyreport-gin/internal/client"
	"github.com/mautops/dailyreport-gin/internal/draft"
	"github.com/mautops/dailyreport-gin/internal/report"
	"github.com/spf13/cobra"
)

// reportCmd represents the report command group
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Work with daily reports as a client",
	Long: `Client commands for the daily report API.
Submit, edit and inspect your own daily reports from the terminal.

Authentication uses --token (Keycloak JWT). Against a local server
without Keycloak configured, --employee passes the identity directly.`,
}

// newStore 按命令行标志创建客户端
func newStore(cmd *cobra.Command) *client.Client {
	server, _ := cmd.Flags().GetString("server")
	token, _ := cmd.Flags().GetString("token")
	employee, _ := cmd.Flags().GetString("employee")
	return client.New(client.Config{
		BaseURL:    server,
		Token:      token,
		EmployeeID: employee,
	})
}

// newForm 创建表单状态机并加载参数集与今天的报告
func newForm(ctx context.Context, store draft.Store) (*draft.FormState, error) {
	params, err := store.GetMyParams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load parameters: %w", err)
	}

	form := draft.New(store)
	form.Initialize(params.Parameters)

	today, err := store.GetToday(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load today's report: %w", err)
	}
	form.LoadToday(today)
	return form, nil
}

// applyEdits 把编辑标志应用到草稿上
func applyEdits(ctx context.Context, form *draft.FormState, cmd *cobra.Command) error {
	sets, _ := cmd.Flags().GetStringArray("set")
	for _, kv := range sets {
		key, raw, ok := splitPair(kv)
		if !ok {
			return fmt.Errorf("invalid --set %q, expected key=value", kv)
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return fmt.Errorf("invalid value in --set %q: %w", kv, err)
		}
		if err := form.SetValue(key, value); err != nil {
			return err
		}
	}

	notes, _ := cmd.Flags().GetStringArray("note")
	for _, kv := range notes {
		key, text, ok := splitPair(kv)
		if !ok {
			return fmt.Errorf("invalid --note %q, expected key=text", kv)
		}
		if err := form.SetNotes(key, text); err != nil {
			return err
		}
	}

	links, _ := cmd.Flags().GetStringArray("link")
	for _, kv := range links {
		key, url, ok := splitPair(kv)
		if !ok {
			return fmt.Errorf("invalid --link %q, expected key=url", kv)
		}
		if err := form.AddLink(key, url); err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("general-notes") {
		general, _ := cmd.Flags().GetString("general-notes")
		form.SetGeneralNotes(general)
	}

	attach, _ := cmd.Flags().GetStringArray("attach")
	if len(attach) > 0 {
		var paramKey *string
		if cmd.Flags().Changed("attach-param") {
			key, _ := cmd.Flags().GetString("attach-param")
			paramKey = &key
		}

		files := make([]draft.UploadFile, 0, len(attach))
		opened := make([]*os.File, 0, len(attach))
		defer func() {
			for _, f := range opened {
				f.Close()
			}
		}()
		for _, path := range attach {
			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			opened = append(opened, f)
			files = append(files, draft.UploadFile{Name: filepath.Base(path), Reader: f})
		}
		if err := form.AddAttachment(ctx, files, paramKey); err != nil {
			return err
		}
	}

	return nil
}

// splitPair 拆分 key=value
func splitPair(s string) (string, string, bool) {
	parts := strings.SplitN(s, "=", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// printReport 打印一份日报
func printReport(r *report.DailyReport, params []report.Parameter) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Date:\t%s\n", r.ReportDate)
	status := "pending"
	if r.IsVerified {
		status = "verified"
		if r.VerifiedBy != nil {
			status += " by " + *r.VerifiedBy
		}
	}
	fmt.Fprintf(w, "Status:\t%s\n", status)
	if r.ManagerComment != "" {
		fmt.Fprintf(w, "Comment:\t%s\n", r.ManagerComment)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "PARAMETER\tVALUE\tTARGET\tPROGRESS\tTIER")
	for _, p := range params {
		entry := r.ReportData[p.Key]
		percent := report.ProgressPercent(entry.Value, p.Target)
		fmt.Fprintf(w, "%s\t%.2f\t%.2f\t%d%%\t%s\n", p.Label, entry.Value, p.Target, percent, report.Tier(percent))
	}

	if r.GeneralNotes != "" {
		fmt.Fprintf(w, "\nNotes:\t%s\n", r.GeneralNotes)
	}
	if len(r.Attachments) > 0 {
		fmt.Fprintln(w, "\nATTACHMENT\tHANDLE\tPARAM")
		for _, a := range r.Attachments {
			param := "-"
			if a.ParamKey != nil {
				param = *a.ParamKey
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", a.FileName, a.FilePath, param)
		}
	}
	w.Flush()
}

// paramsCmd 列出汇报指标
var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "List my reporting parameters",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore(cmd)
		result, err := store.GetMyParams(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Role: %s\n\n", result.RoleName)
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tLABEL\tTARGET\tTYPE\tPROOF")
		for _, p := range result.Parameters {
			proof := "no"
			if p.AllowProof {
				proof = "yes"
			}
			fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\t%s\n", p.Key, p.Label, p.Target, p.Type, proof)
		}
		return w.Flush()
	},
}

// todayCmd 查看今天的日报
var todayCmd = &cobra.Command{
	Use:   "today",
	Short: "Show today's report",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore(cmd)
		form, err := newForm(cmd.Context(), store)
		if err != nil {
			return err
		}

		if form.Mode() == draft.ModeNew {
			fmt.Println("No report submitted today.")
			return nil
		}
		printReport(form.ActiveReport(), form.Parameters())
		return nil
	},
}

// listCmd 列出历史日报
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List my reports in a date range",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore(cmd)

		end, _ := cmd.Flags().GetString("end")
		if end == "" {
			end = time.Now().Format(report.DateLayout)
		}
		start, _ := cmd.Flags().GetString("start")
		if start == "" {
			start = time.Now().AddDate(0, 0, -30).Format(report.DateLayout)
		}

		reports, err := store.GetMyReports(cmd.Context(), start, end)
		if err != nil {
			return err
		}
		if len(reports) == 0 {
			fmt.Println("No reports found.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDATE\tSTATUS\tNOTES")
		for _, r := range reports {
			status := "pending"
			if r.IsVerified {
				status = "verified"
			}
			notes := r.GeneralNotes
			if len(notes) > 40 {
				notes = notes[:37] + "..."
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.ID, r.ReportDate, status, notes)
		}
		return w.Flush()
	},
}

// statsCmd 查看当月提交统计
var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show my submission stats for the current month",
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore(cmd)
		stats, err := store.GetMyStats(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintf(w, "Month:\t%s\n", stats.Month)
		fmt.Fprintf(w, "Reports:\t%d\n", stats.TotalReports)
		fmt.Fprintf(w, "Verified:\t%d\n", stats.VerifiedReports)
		fmt.Fprintf(w, "Pending:\t%d\n", stats.PendingReports)
		fmt.Fprintf(w, "Working days:\t%d\n", stats.WorkingDays)
		fmt.Fprintf(w, "Submission rate:\t%.1f%%\n", stats.SubmissionRate)
		return w.Flush()
	},
}

// submitCmd 提交今天的日报
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit today's report",
	Long: `Submit a new report for today. Parameter values, notes, links and
attachments are given as flags; unspecified parameters default to zero.

Fails if today's report already exists, use "report edit" instead.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore(cmd)
		form, err := newForm(cmd.Context(), store)
		if err != nil {
			return err
		}

		if form.Mode() != draft.ModeNew {
			return fmt.Errorf("today's report already exists, use \"report edit\"")
		}

		if err := applyEdits(cmd.Context(), form, cmd); err != nil {
			return err
		}

		saved, err := form.Commit(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Report %s submitted.\n\n", saved.ID)
		printReport(saved, form.Parameters())
		return nil
	},
}

// editCmd 编辑日报
var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit today's report or a historical one",
	Long: `Edit an existing report. Without --date this edits today's report;
with --date it looks up that day's report and edits it in place.
Verified reports are immutable and cannot be edited.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := newStore(cmd)
		form, err := newForm(cmd.Context(), store)
		if err != nil {
			return err
		}

		date, _ := cmd.Flags().GetString("date")
		today := time.Now().Format(report.DateLayout)

		if date != "" && date != today {
			reports, err := store.GetMyReports(cmd.Context(), date, date)
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				return fmt.Errorf("no report found for %s", date)
			}
			if err := form.BeginEditHistorical(reports[0]); err != nil {
				return err
			}
		} else if form.Mode() == draft.ModeNew {
			return fmt.Errorf("no report submitted today, use \"report submit\"")
		}

		if err := applyEdits(cmd.Context(), form, cmd); err != nil {
			return err
		}

		saved, err := form.Commit(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("Report %s updated.\n\n", saved.ID)
		printReport(saved, form.Parameters())
		return nil
	},
}

// deleteCmd 删除日报
var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete an unverified report",
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		if id == "" {
			return fmt.Errorf("--id is required")
		}

		store := newStore(cmd)
		form, err := newForm(cmd.Context(), store)
		if err != nil {
			return err
		}

		if err := form.Remove(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Printf("Report %s deleted.\n", id)
		return nil
	},
}

// exportCmd 导出月度日报
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a month of reports to an xlsx file",
	RunE: func(cmd *cobra.Command, args []string) error {
		month, _ := cmd.Flags().GetString("month")
		if month == "" {
			month = time.Now().Format("2006-01")
		}
		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			out = fmt.Sprintf("reports-%s.xlsx", month)
		}

		store := newStore(cmd)
		data, err := store.Export(cmd.Context(), month)
		if err != nil {
			return err
		}

		if err := os.WriteFile(out, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		fmt.Printf("Exported %d bytes to %s\n", len(data), out)
		return nil
	},
}

// addEditFlags 注册草稿编辑标志
func addEditFlags(cmd *cobra.Command) {
	cmd.Flags().StringArray("set", nil, "Set a parameter value, key=value (repeatable)")
	cmd.Flags().StringArray("note", nil, "Set a parameter note, key=text (repeatable)")
	cmd.Flags().StringArray("link", nil, "Add a parameter link, key=url (repeatable)")
	cmd.Flags().String("general-notes", "", "Set the general notes")
	cmd.Flags().StringArray("attach", nil, "Attach a file by path (repeatable)")
	cmd.Flags().String("attach-param", "", "Parameter key the attached files prove")
}

func init() {
	rootCmd.AddCommand(reportCmd)

	// 连接标志
	reportCmd.PersistentFlags().String("server", "http://localhost:8080", "API server base URL")
	reportCmd.PersistentFlags().String("token", "", "Bearer token (Keycloak JWT)")
	reportCmd.PersistentFlags().String("employee", "", "Employee ID for local development mode")

	reportCmd.AddCommand(paramsCmd)
	reportCmd.AddCommand(todayCmd)
	reportCmd.AddCommand(listCmd)
	reportCmd.AddCommand(statsCmd)
	reportCmd.AddCommand(submitCmd)
	reportCmd.AddCommand(editCmd)
	reportCmd.AddCommand(deleteCmd)
	reportCmd.AddCommand(exportCmd)

	listCmd.Flags().String("start", "", "Start date YYYY-MM-DD (default: 30 days ago)")
	listCmd.Flags().String("end", "", "End date YYYY-MM-DD (default: today)")

	addEditFlags(submitCmd)
	addEditFlags(editCmd)
	editCmd.Flags().String("date", "", "Date of the report to edit, YYYY-MM-DD (default: today)")

	deleteCmd.Flags().String("id", "", "Report ID to delete")

	exportCmd.Flags().String("month", "", "Month YYYY-MM (default: current month)")
	exportCmd.Flags().StringP("output", "o", "", "Output file path")
}
