package main

import (
	"os"
	"path"
	"strconv"

	"github.com/joho/godotenv"
	yaml "gopkg.in/yaml.v2"
)

// config carries everything the drivers need for remote access. It is built
// once in main and passed down explicitly; nothing below main reads the
// environment.
type config struct {
	AccessToken string `yaml:"access_token"`
	BudgetID    string `yaml:"budget_id"`
	AccountID   string `yaml:"account_id"`

	AI struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"ai"`

	// CSVFile is the default canonical CSV path for import and apply.
	CSVFile string `yaml:"csv_file"`

	// DupDays is the duplicate window for import: an existing remote txn
	// with the same amount within +/- DupDays days counts as a duplicate.
	DupDays int `yaml:"duplicate_days"`

	// PayeeCategories maps a lowercased payee name to a category name,
	// used by import when a CSV row carries no category of its own.
	PayeeCategories map[string]string `yaml:"payee_categories"`
}

// loadConfig reads .env (if present), then config.yaml from confDir, then
// lets environment variables override the file.
func loadConfig(confDir string) *config {
	_ = godotenv.Load()

	c := &config{DupDays: 5, CSVFile: "amazon_ynab_ready.csv"}

	if data, err := os.ReadFile(path.Join(confDir, "config.yaml")); err == nil {
		checkf(yaml.Unmarshal(data, c), "Unable to parse config.yaml in %v", confDir)
	}

	if v := os.Getenv("YNAB_ACCESS_TOKEN"); v != "" {
		c.AccessToken = v
	}
	if v := os.Getenv("YNAB_BUDGET_ID"); v != "" {
		c.BudgetID = v
	}
	if v := os.Getenv("YNAB_ACCOUNT_ID"); v != "" {
		c.AccountID = v
	}
	if v := os.Getenv("ANTHROPIC_API_KEY"); v != "" {
		c.AI.APIKey = v
	}
	if v := os.Getenv("YNAB_CSV_FILE"); v != "" {
		c.CSVFile = v
	}
	if v := os.Getenv("YNAB_DUPLICATE_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.DupDays = n
		}
	}
	return c
}

// requireLedger aborts unless the remote ledger credentials are set. Called
// by every driver that reads or mutates the budget.
func requireLedger(c *config) {
	if c.AccessToken == "" || c.BudgetID == "" || c.AccountID == "" {
		oerr("Set YNAB_ACCESS_TOKEN, YNAB_BUDGET_ID and YNAB_ACCOUNT_ID in .env or config.yaml")
		os.Exit(1)
	}
}
