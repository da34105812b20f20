// Package main provides a performance benchmarking tool for the pmpulse CLI.
// It generates synthetic portfolios of increasing size, loads each one into
// a SQLite snapshot store and times report commands against both the YAML
// and SQLite backends. Each command runs several times; the first successful
// run is treated as cold and the rest are averaged as warm.
//
// Prerequisites:
// - pmpulse binary installed and available in PATH
//
// Usage: go run benchmark/main.go [work-dir]
//
//	work-dir: Directory where datasets and databases are written
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/huangsam/pmpulse/internal/iostore"
	"github.com/huangsam/pmpulse/schema"
	"github.com/shopspring/decimal"
)

// BenchmarkResult holds the timings of one command against one dataset.
type BenchmarkResult struct {
	Dataset  string
	Command  string
	YAMLTime string
	ColdTime string
	WarmTime string
}

// BenchmarkConfig holds configuration for the benchmark run.
type BenchmarkConfig struct {
	WorkDir  string
	Timeout  time.Duration
	Runs     int
	Sizes    map[string]int // dataset name to project count
	Order    []string
	Commands [][]string
}

const ownerID = "u-bench-owner"

func main() {
	if len(os.Args) != 2 {
		fmt.Printf("Usage: %s [work-dir]\n", os.Args[0])
		os.Exit(1)
	}

	config := BenchmarkConfig{
		WorkDir: os.Args[1],
		Timeout: 2 * time.Minute,
		Runs:    4,
		Sizes:   map[string]int{"small": 10, "medium": 200, "large": 2000},
		Order:   []string{"small", "medium", "large"},
		Commands: [][]string{
			{"dashboard", "--range", "12 months"},
			{"pnl"},
			{"workload", "--limit", "20"},
			{"curve", "--range", "all"},
		},
	}

	if err := checkPrerequisites(config); err != nil {
		fmt.Printf("Prerequisites check failed: %v\n", err)
		os.Exit(1)
	}

	var results []BenchmarkResult
	for _, name := range config.Order {
		yamlPath, dbPath, err := prepareDataset(config, name)
		if err != nil {
			fmt.Printf("Failed to prepare %s dataset: %v\n", name, err)
			os.Exit(1)
		}
		for _, command := range config.Commands {
			results = append(results, runBenchmarkSuite(config, name, yamlPath, dbPath, command))
		}
	}

	if err := saveResults(results); err != nil {
		fmt.Printf("Failed to save results: %v\n", err)
		os.Exit(1)
	}

	printSummary(config, results)
}

// checkPrerequisites verifies that the pmpulse binary and work directory exist.
func checkPrerequisites(config BenchmarkConfig) error {
	if _, err := exec.LookPath("pmpulse"); err != nil {
		return fmt.Errorf("pmpulse binary not found in PATH")
	}
	return os.MkdirAll(config.WorkDir, 0o755)
}

// generateDataset builds a portfolio with the given number of projects.
// Every project has eight phases, two documents per phase and one change order
// per phase. Staff are shared across projects.
func generateDataset(projects int) schema.Dataset {
	now := time.Now().UTC()
	statuses := []schema.PhaseStatus{
		schema.PhasePending, schema.PhaseInProgress, schema.PhaseReviewRequested,
		schema.PhaseUnderReview, schema.PhaseComplete,
	}
	data := schema.Dataset{
		Users: []schema.User{{ID: ownerID, Name: "Benchmark Owner", Role: schema.RoleOwner}},
	}

	staffCount := max(projects/2, 3)
	for s := range staffCount {
		data.Staff = append(data.Staff, schema.Staff{ID: fmt.Sprintf("s-%d", s), Name: fmt.Sprintf("Staff %d", s)})
	}

	for p := range projects {
		projectID := fmt.Sprintf("p-%d", p)
		data.Projects = append(data.Projects, schema.Project{
			ID:     projectID,
			Name:   fmt.Sprintf("Project %d", p),
			Status: schema.ProjectActive,
			Budget: decimal.NewFromInt(int64(100000 + p*1000)),
		})
		data.Members = append(data.Members, schema.Member{UserID: ownerID, ProjectID: projectID})

		for ph := range 8 {
			phaseID := fmt.Sprintf("%s-ph-%d", projectID, ph)
			created := now.AddDate(0, -((p + ph) % 14), -ph)
			data.Phases = append(data.Phases, schema.Phase{
				ID:            phaseID,
				ProjectID:     projectID,
				Name:          fmt.Sprintf("Phase %d", ph),
				Status:        statuses[(p+ph)%len(statuses)],
				EstimatedCost: decimal.NewFromInt(int64(10000 + ph*500)),
				ActualCost:    decimal.NewFromInt(int64(8000 + ph*700)),
				CreatedAt:     created,
				UpdatedAt:     created.AddDate(0, 0, (p+ph)%40),
			})
			data.Assignments = append(data.Assignments, schema.Assignment{
				StaffID: data.Staff[(p*8+ph)%staffCount].ID,
				PhaseID: phaseID,
			})
			for d := range 2 {
				data.Documents = append(data.Documents, schema.Document{
					ID:        fmt.Sprintf("%s-doc-%d", phaseID, d),
					PhaseID:   phaseID,
					CreatedAt: created.AddDate(0, 0, d*3),
				})
			}
			data.ChangeOrders = append(data.ChangeOrders, schema.ChangeOrder{
				ID:      fmt.Sprintf("%s-co", phaseID),
				PhaseID: phaseID,
				Status:  schema.ChangeOrderApproved,
				Amount:  decimal.NewFromInt(int64(500 * (ph + 1))),
			})
		}
	}
	return data
}

// prepareDataset writes the YAML dataset and imports it into a fresh SQLite store.
func prepareDataset(config BenchmarkConfig, name string) (yamlPath, dbPath string, err error) {
	yamlPath = filepath.Join(config.WorkDir, name+".yaml")
	dbPath = filepath.Join(config.WorkDir, name+".db")
	fmt.Printf("Generating %s dataset (%d projects)\n", name, config.Sizes[name])

	file, err := os.Create(yamlPath)
	if err != nil {
		return "", "", err
	}
	if err := iostore.EncodeDataset(file, generateDataset(config.Sizes[name])); err != nil {
		_ = file.Close()
		return "", "", err
	}
	if err := file.Close(); err != nil {
		return "", "", err
	}

	_ = os.Remove(dbPath)
	importCmd := exec.Command("pmpulse", "db", "import", yamlPath, "--store-db-connect", dbPath)
	if output, err := importCmd.CombinedOutput(); err != nil {
		return "", "", fmt.Errorf("import failed: %w\nOutput: %s", err, string(output))
	}
	return yamlPath, dbPath, nil
}

// runBenchmarkSuite times a command against the YAML file and the SQLite store.
func runBenchmarkSuite(config BenchmarkConfig, name, yamlPath, dbPath string, command []string) BenchmarkResult {
	label := strings.Join(command, " ")
	fmt.Printf("Running %s on %s\n", label, name)

	yamlArgs := append(append([]string{}, command...), "--store-backend", "yaml", "--store-db-connect", yamlPath)
	_, yamlTimes := runBenchmark(config, yamlArgs)

	sqliteArgs := append(append([]string{}, command...), "--store-db-connect", dbPath)
	cold, warmTimes := runBenchmark(config, sqliteArgs)

	coldStr := "TIMEOUT"
	if cold > 0 {
		coldStr = fmt.Sprintf("%.3fs", cold)
	}
	result := BenchmarkResult{
		Dataset:  name,
		Command:  command[0],
		YAMLTime: average(yamlTimes),
		ColdTime: coldStr,
		WarmTime: average(warmTimes),
	}
	fmt.Printf("  YAML average: %s, SQLite cold: %s, SQLite warm average: %s\n", result.YAMLTime, result.ColdTime, result.WarmTime)
	return result
}

// runBenchmark executes a pmpulse command several times and returns the cold time and warm times.
func runBenchmark(config BenchmarkConfig, args []string) (coldTime float64, warmTimes []float64) {
	args = append(args, "--user", ownerID, "--color", "no")

	var times []float64
	for range config.Runs {
		start := time.Now()
		cmd := exec.Command("pmpulse", args...)

		done := make(chan bool, 1)
		var output []byte
		var cmdErr error
		go func() {
			output, cmdErr = cmd.CombinedOutput()
			done <- true
		}()

		select {
		case <-done:
			if cmdErr == nil && isSuccess(output) {
				times = append(times, time.Since(start).Seconds())
			}
		case <-time.After(config.Timeout):
			_ = cmd.Process.Kill()
		}
	}

	if len(times) > 0 {
		coldTime = times[0]
		warmTimes = times[1:]
	}
	return
}

func average(times []float64) string {
	if len(times) == 0 {
		return "TIMEOUT"
	}
	var sum float64
	for _, t := range times {
		sum += t
	}
	return fmt.Sprintf("%.3fs", sum/float64(len(times)))
}

// isSuccess checks if command output indicates successful completion.
func isSuccess(output []byte) bool {
	return strings.Contains(string(output), "Report completed in")
}

// saveResults writes benchmark results to a timestamped CSV file.
func saveResults(results []BenchmarkResult) error {
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("/tmp/pmpulse_benchmark_%s.csv", timestamp)

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			fmt.Printf("Warning: failed to close file %s: %v\n", filename, closeErr)
		}
	}()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"dataset", "cmd", "yaml_avg", "sqlite_cold", "sqlite_warm_avg"}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, result := range results {
		if err := writer.Write([]string{result.Dataset, result.Command, result.YAMLTime, result.ColdTime, result.WarmTime}); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	fmt.Printf("Results saved to %s\n", filename)
	return nil
}

// printSummary displays the final benchmark results per command.
func printSummary(config BenchmarkConfig, results []BenchmarkResult) {
	fmt.Printf("Benchmark complete\n")
	for _, command := range config.Commands {
		fmt.Printf("%s:\n", command[0])
		for _, result := range results {
			if result.Command == command[0] {
				fmt.Printf("  %-8s: YAML: %s, Cold: %s, Warm: %s\n", result.Dataset, result.YAMLTime, result.ColdTime, result.WarmTime)
			}
		}
	}
}
