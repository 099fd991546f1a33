package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL   string
	timeout   time.Duration
	authToken string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "leavectl",
		Short: "LeaveLedger CLI tool",
		Long:  `A command line interface for operating the LeaveLedger API.`,
	}

	rootCmd.PersistentFlags().StringVar(&baseURL, "url", "http://localhost:8080", "Base URL of the LeaveLedger API")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVar(&authToken, "token", "", "Bearer token for admin endpoints")

	// Batch job commands
	jobsCmd := &cobra.Command{
		Use:   "jobs",
		Short: "Batch job operations",
	}

	var rolloverYear int
	rolloverCmd := &cobra.Command{
		Use:   "rollover",
		Short: "Advance all balances into a new fiscal year",
		Run: func(cmd *cobra.Command, args []string) {
			body := map[string]any{}
			if rolloverYear > 0 {
				body["year"] = rolloverYear
			}
			runJob("/api/v1/jobs/rollover", body)
		},
	}
	rolloverCmd.Flags().IntVar(&rolloverYear, "year", 0, "Target fiscal year (defaults to the current year)")

	vestingCmd := &cobra.Command{
		Use:   "vesting",
		Short: "Vest the monthly accrual for all current balances",
		Run: func(cmd *cobra.Command, args []string) {
			runJob("/api/v1/jobs/vesting", nil)
		},
	}

	jobsCmd.AddCommand(rolloverCmd, vestingCmd)
	rootCmd.AddCommand(jobsCmd)

	// Entitlement rule commands
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "Entitlement rule operations",
	}

	currentRuleCmd := &cobra.Command{
		Use:   "current",
		Short: "Show the rule currently in force",
		Run: func(cmd *cobra.Command, args []string) {
			get("/api/v1/rules/current")
		},
	}

	var technicianDays, standardDays int
	var updatedBy string
	setRuleCmd := &cobra.Command{
		Use:   "set",
		Short: "Publish a new entitlement rule and re-base current balances",
		Run: func(cmd *cobra.Command, args []string) {
			post("/api/v1/rules", map[string]any{
				"technician_days": technicianDays,
				"standard_days":   standardDays,
				"updated_by":      updatedBy,
			}, http.StatusCreated)
		},
	}
	setRuleCmd.Flags().IntVar(&technicianDays, "technician", 72, "Annual days for technician grades")
	setRuleCmd.Flags().IntVar(&standardDays, "standard", 45, "Annual days for all other grades")
	setRuleCmd.Flags().StringVar(&updatedBy, "by", "", "Who is publishing the rule")

	rulesCmd.AddCommand(currentRuleCmd, setRuleCmd)
	rootCmd.AddCommand(rulesCmd)

	// Balance lookup
	var balanceYear int
	balanceCmd := &cobra.Command{
		Use:   "balance [employee-id]",
		Short: "Show an employee's balance",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			path := fmt.Sprintf("/api/v1/employees/%s/balance", args[0])
			if balanceYear > 0 {
				path = fmt.Sprintf("%s?year=%d", path, balanceYear)
			}
			get(path)
		},
	}
	balanceCmd.Flags().IntVar(&balanceYear, "year", 0, "Fiscal year (defaults to the current year)")
	rootCmd.AddCommand(balanceCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runJob(path string, body map[string]any) {
	post(path, body, http.StatusOK)
}

func post(path string, body map[string]any, wantStatus int) {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}

	req, err := http.NewRequest(http.MethodPost, baseURL+path, bytes.NewReader(payload))
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}
	req.Header.Set("Content-Type", "application/json")

	do(req, wantStatus)
}

func get(path string) {
	req, err := http.NewRequest(http.MethodGet, baseURL+path, nil)
	if err != nil {
		fmt.Printf("Error building request: %v\n", err)
		os.Exit(1)
	}

	do(req, http.StatusOK)
}

func do(req *http.Request, wantStatus int) {
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	client := &http.Client{Timeout: timeout}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error making request: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != wantStatus {
		fmt.Printf("Request FAILED (Status: %d)\nResponse: %s\n", resp.StatusCode, string(body))
		os.Exit(1)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, body, "", "  "); err != nil {
		fmt.Println(string(body))
		return
	}

	fmt.Println(pretty.String())
}
