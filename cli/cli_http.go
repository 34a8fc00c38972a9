package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"pawphysio/validation"
)

// CLIHttp is the CLI for HTTP client mode
type CLIHttp struct {
	rl         *readline.Instance
	running    bool
	client     *Client
	config     *Config
	serverName string
}

// NewCLIHttp creates a new HTTP client CLI instance
func NewCLIHttp(config *Config, serverName string) (*CLIHttp, error) {
	server, err := config.GetServer(serverName)
	if err != nil {
		return nil, err
	}
	if serverName == "" {
		serverName = config.DefaultServer
	}

	client := NewClient(server.URL, server.Token)

	// Test connectivity
	if err := client.HealthCheck(); err != nil {
		return nil, fmt.Errorf("cannot connect to server: %v", err)
	}

	// Create readline instance; ignore Ctrl+C
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %v", err)
	}

	return &CLIHttp{
		rl:         rl,
		running:    true,
		client:     client,
		config:     config,
		serverName: serverName,
	}, nil
}

// Start runs the CLI loop
func (c *CLIHttp) Start() {
	defer c.rl.Close()
	c.printWelcome()

	for c.running {
		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				// Ctrl+C pressed
				fmt.Println("\n⚠ Ctrl+C detected. Please use 'exit' or 'quit' command to exit gracefully.")
				continue
			}
			// EOF or other error; exit
			break
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		c.handleCommand(input)
	}
}

// printWelcome prints initial banner
func (c *CLIHttp) printWelcome() {
	PrintBanner("PawPhysio - Admin Console (HTTP Client)")
	fmt.Printf("\nConnected to: %s\n", c.client.baseURL)
	if c.client.token == "" {
		fmt.Println("Not logged in. Use 'login' before admin commands.")
	}
	fmt.Println("Type 'help' for available commands")
}

// handleCommand routes user commands
func (c *CLIHttp) handleCommand(input string) {
	parts := strings.Fields(input)
	if len(parts) == 0 {
		return
	}

	cmd := strings.ToLower(parts[0])
	args := parts[1:]

	switch cmd {
	case "help", "h", "?":
		c.showHelp()
	case "login":
		c.handleLogin()
	case "booking", "bookings":
		c.handleBookingCommand(args)
	case "errors", "err":
		c.handleUserErrorCommand(args)
	case "logs", "log":
		c.handleErrorLogCommand(args)
	case "email", "emails":
		c.handleEmailCommand(args)
	case "status", "st":
		c.handleStatusCommand()
	case "metrics":
		c.handleMetricsCommand()
	case "shutdown":
		c.handleShutdownCommand()
	case "clear":
		c.clearScreen()
	case "exit", "quit", "q":
		c.handleExit()
	default:
		fmt.Printf("Unknown command: %s. Type 'help' for available commands.\n", cmd)
	}
}

// showHelp prints available commands
func (c *CLIHttp) showHelp() {
	fmt.Println()
	PrintBanner("Available Commands")
	fmt.Println()

	commands := [][]string{
		{"help, h, ?", "Show this help message"},
		{"login", "Log in and store the API token"},
		{"", ""},
		{"BOOKINGS:", ""},
		{"booking list [status] [page]", "List bookings, newest first"},
		{"booking status <id> <status>", "Set booking status (scheduled/completed/cancelled)"},
		{"", ""},
		{"USER ERROR TRIAGE:", ""},
		{"errors list [status] [page]", "List user-reported errors"},
		{"errors review <id> <valid|needs_review> [notes]", "Review a user error"},
		{"errors delete <id>", "Delete a user error"},
		{"", ""},
		{"SYSTEM ERROR LOGS:", ""},
		{"logs list [page]", "List technical error logs"},
		{"logs delete <id>", "Delete an error log"},
		{"logs clear", "Delete ALL error logs"},
		{"logs export <json|csv> [file]", "Export the current page"},
		{"", ""},
		{"EMAIL LOGS:", ""},
		{"email list [status] [page]", "List email delivery logs"},
		{"email stats [days]", "Delivery statistics over a rolling window"},
		{"email retry <id>", "Re-send a failed email"},
		{"", ""},
		{"SYSTEM:", ""},
		{"status", "Server health"},
		{"metrics", "Metrics snapshot"},
		{"shutdown", "Shut the server down (with confirmation code)"},
		{"clear", "Clear screen"},
		{"exit, quit, q", "Exit the program"},
	}

	for _, cmd := range commands {
		if len(cmd) == 2 && cmd[0] != "" {
			fmt.Printf("  %-48s %s\n", cmd[0], cmd[1])
		} else {
			fmt.Println()
		}
	}
}

// handleLogin performs interactive login and persists the token
func (c *CLIHttp) handleLogin() {
	email, cancelled := c.readInputWithCancel("Email", "")
	if cancelled {
		fmt.Println("\n❌ Operation cancelled")
		return
	}
	if !validation.IsValidEmail(email) {
		fmt.Println("Invalid email address")
		return
	}

	password, cancelled := c.readInputPasswordWithCancel("Password")
	if cancelled {
		fmt.Println("\n❌ Operation cancelled")
		return
	}

	token, err := c.client.Login(email, password)
	if err != nil {
		fmt.Printf("Login failed: %v\n", err)
		return
	}

	if err := c.config.SetToken(c.serverName, token); err != nil {
		fmt.Printf("⚠ Logged in, but failed to save token: %v\n", err)
		return
	}
	fmt.Println("✓ Logged in, token saved.")
}

// handleBookingCommand handles booking-related commands
func (c *CLIHttp) handleBookingCommand(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: booking <list|status> [args]")
		return
	}

	switch args[0] {
	case "list", "ls":
		status, page := optionalStatusAndPage(args[1:])
		c.listBookings(status, page)
	case "status":
		if len(args) < 3 {
			fmt.Println("Usage: booking status <id> <scheduled|completed|cancelled>")
			return
		}
		if err := c.client.SetBookingStatus(args[1], args[2]); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Println("✓ Booking updated.")
	default:
		fmt.Printf("Unknown booking command: %s\n", args[0])
	}
}

// listBookings prints a booking table
func (c *CLIHttp) listBookings(status string, page int) {
	result, err := c.client.ListBookings(status, page, 20)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if len(result.Data) == 0 {
		fmt.Println("No bookings found.")
		return
	}

	fmt.Println()
	PrintBanner(fmt.Sprintf("Bookings: %d total (page %d)", result.Total, result.Page))
	fmt.Println()

	fmt.Printf("%-38s %-18s %-12s %-16s %-16s %-10s\n", "ID", "Client", "Dog", "Service", "Starts", "Status")
	fmt.Println(strings.Repeat("-", 115))

	for _, b := range result.Data {
		fmt.Printf("%-38s %-18s %-12s %-16s %-16s %-10s\n",
			b.ID,
			truncate(b.ClientName, 18),
			truncate(b.DogName, 12),
			truncate(b.ServiceName, 16),
			b.StartsAt.Format("02/01/2006 15:04"),
			b.Status,
		)
	}
}

// handleUserErrorCommand handles user error triage commands
func (c *CLIHttp) handleUserErrorCommand(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: errors <list|review|delete> [args]")
		return
	}

	switch args[0] {
	case "list", "ls":
		status, page := optionalStatusAndPage(args[1:])
		c.listUserErrors(status, page)
	case "review":
		if len(args) < 3 {
			fmt.Println("Usage: errors review <id> <valid|needs_review> [notes]")
			return
		}
		id, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			fmt.Println("Invalid ID.")
			return
		}
		notes := strings.Join(args[3:], " ")
		ue, err := c.client.ReviewUserError(uint(id), args[2], notes)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("✓ Error #%d marked %s.\n", ue.ID, ue.Status)
	case "delete", "del", "rm":
		if len(args) < 2 {
			fmt.Println("Usage: errors delete <id>")
			return
		}
		id, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			fmt.Println("Invalid ID.")
			return
		}
		if err := c.client.DeleteUserError(uint(id)); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Println("✓ User error deleted.")
	default:
		fmt.Printf("Unknown errors command: %s\n", args[0])
	}
}

// listUserErrors prints a user error table
func (c *CLIHttp) listUserErrors(status string, page int) {
	result, err := c.client.ListUserErrors(status, page, 20)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if len(result.Data) == 0 {
		fmt.Println("No user errors found.")
		return
	}

	fmt.Println()
	PrintBanner(fmt.Sprintf("User Errors: %d total (page %d)", result.Total, result.Page))
	fmt.Println()

	fmt.Printf("%-6s %-16s %-24s %-40s %-13s\n", "ID", "When", "User", "Message", "Status")
	fmt.Println(strings.Repeat("-", 102))

	for _, ue := range result.Data {
		fmt.Printf("%-6d %-16s %-24s %-40s %-13s\n",
			ue.ID,
			ue.CreatedAt.Format("02/01 15:04:05"),
			truncate(ue.UserEmail, 24),
			truncate(ue.ErrorMessage, 40),
			ue.Status,
		)
	}
}

// handleErrorLogCommand handles system error log commands
func (c *CLIHttp) handleErrorLogCommand(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: logs <list|delete|clear|export> [args]")
		return
	}

	switch args[0] {
	case "list", "ls":
		page := 1
		if len(args) > 1 {
			if p, err := strconv.Atoi(args[1]); err == nil && p > 0 {
				page = p
			}
		}
		c.listErrorLogs(page)
	case "delete", "del", "rm":
		if len(args) < 2 {
			fmt.Println("Usage: logs delete <id>")
			return
		}
		id, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			fmt.Println("Invalid ID.")
			return
		}
		if err := c.client.DeleteErrorLog(uint(id)); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Println("✓ Error log deleted.")
	case "clear":
		confirm, cancelled := c.readInputWithCancel("Delete ALL error logs? (yes/no)", "no")
		if cancelled || confirm != "yes" {
			fmt.Println("Cancelled.")
			return
		}
		deleted, err := c.client.ClearErrorLogs()
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Printf("✓ %d error log(s) deleted.\n", deleted)
	case "export":
		if len(args) < 2 {
			fmt.Println("Usage: logs export <json|csv> [file]")
			return
		}
		format := args[1]
		data, err := c.client.ExportErrorLogs(format, 1, 100)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		file := fmt.Sprintf("error-logs-%s.%s", time.Now().Format("2006-01-02"), format)
		if len(args) > 2 {
			file = args[2]
		}
		if err := os.WriteFile(file, data, 0600); err != nil {
			fmt.Printf("Error writing file: %v\n", err)
			return
		}
		fmt.Printf("✓ Exported to %s (%d bytes).\n", file, len(data))
	default:
		fmt.Printf("Unknown logs command: %s\n", args[0])
	}
}

// listErrorLogs prints a technical error log table
func (c *CLIHttp) listErrorLogs(page int) {
	result, err := c.client.ListErrorLogs(page, 20)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if len(result.Data) == 0 {
		fmt.Println("No error logs found.")
		return
	}

	fmt.Println()
	PrintBanner(fmt.Sprintf("Error Logs: %d total (page %d)", result.Total, result.Page))
	fmt.Println()

	fmt.Printf("%-6s %-16s %-7s %-18s %-45s\n", "ID", "When", "Type", "Component", "Message")
	fmt.Println(strings.Repeat("-", 95))

	for _, l := range result.Data {
		fmt.Printf("%-6d %-16s %-7s %-18s %-45s\n",
			l.ID,
			l.CreatedAt.Format("02/01 15:04:05"),
			l.ErrorType,
			truncate(l.Component, 18),
			truncate(l.ErrorMessage, 45),
		)
	}
}

// handleEmailCommand handles email log commands
func (c *CLIHttp) handleEmailCommand(args []string) {
	if len(args) == 0 {
		fmt.Println("Usage: email <list|stats|retry> [args]")
		return
	}

	switch args[0] {
	case "list", "ls":
		status, page := optionalStatusAndPage(args[1:])
		c.listEmailLogs(status, page)
	case "stats":
		days := 0
		if len(args) > 1 {
			if d, err := strconv.Atoi(args[1]); err == nil && d > 0 {
				days = d
			}
		}
		stats, err := c.client.EmailStats(days)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Println()
		PrintBanner(fmt.Sprintf("Email Stats (last %d days)", stats.WindowDays))
		fmt.Printf("\nTotal:    %d\n", stats.Total)
		fmt.Printf("Sent:     %d\n", stats.Sent)
		fmt.Printf("Failed:   %d\n", stats.Failed)
		fmt.Printf("Pending:  %d\n", stats.Pending)
		fmt.Printf("Success:  %.1f%%\n", stats.SuccessRate*100)
	case "retry":
		if len(args) < 2 {
			fmt.Println("Usage: email retry <id>")
			return
		}
		id, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			fmt.Println("Invalid ID.")
			return
		}
		if err := c.client.RetryEmail(uint(id)); err != nil {
			fmt.Printf("Error: %v\n", err)
			return
		}
		fmt.Println("✓ Email re-sent (new log row written).")
	default:
		fmt.Printf("Unknown email command: %s\n", args[0])
	}
}

// listEmailLogs prints an email log table
func (c *CLIHttp) listEmailLogs(status string, page int) {
	result, err := c.client.ListEmailLogs(status, page, 20)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	if len(result.Data) == 0 {
		fmt.Println("No email logs found.")
		return
	}

	fmt.Println()
	PrintBanner(fmt.Sprintf("Email Logs: %d total (page %d)", result.Total, result.Page))
	fmt.Println()

	fmt.Printf("%-6s %-16s %-22s %-26s %-8s\n", "ID", "When", "Type", "Recipient", "Status")
	fmt.Println(strings.Repeat("-", 82))

	for _, e := range result.Data {
		fmt.Printf("%-6d %-16s %-22s %-26s %-8s\n",
			e.ID,
			e.CreatedAt.Format("02/01 15:04:05"),
			truncate(e.EmailType, 22),
			truncate(e.RecipientEmail, 26),
			e.Status,
		)
	}
}

// handleStatusCommand checks server health
func (c *CLIHttp) handleStatusCommand() {
	if err := c.client.HealthCheck(); err != nil {
		fmt.Printf("✗ Server unhealthy: %v\n", err)
		return
	}
	fmt.Println("✓ Server healthy.")
}

// handleMetricsCommand prints the metrics snapshot
func (c *CLIHttp) handleMetricsCommand() {
	metrics, err := c.client.GetMetrics()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Println()
	PrintBanner("Metrics Snapshot")
	fmt.Println()

	for _, section := range []string{"capture", "user_errors", "error_logs", "system"} {
		values, ok := metrics[section].(map[string]interface{})
		if !ok {
			continue
		}
		fmt.Printf("%s:\n", section)
		for k, v := range values {
			fmt.Printf("  %-20s %v\n", k, v)
		}
	}
}

// handleShutdownCommand runs the confirmation-code shutdown flow
func (c *CLIHttp) handleShutdownCommand() {
	code, err := c.client.GenerateShutdownCode()
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}

	fmt.Printf("\n⚠ Shutdown code generated: %s (valid 5 minutes)\n", code)
	input, cancelled := c.readInputWithCancel("Re-enter the code to confirm shutdown", "")
	if cancelled {
		fmt.Println("\n❌ Operation cancelled")
		return
	}

	if err := c.client.VerifyShutdown(input); err != nil {
		fmt.Printf("Error: %v\n", err)
		return
	}
	fmt.Println("✓ Shutdown initiated.")
}

func (c *CLIHttp) clearScreen() {
	fmt.Print("\033[H\033[2J")
}

// handleExit exits the CLI
func (c *CLIHttp) handleExit() {
	fmt.Println("\nGoodbye!")
	c.running = false
}

// optionalStatusAndPage reads [status] [page] in either order-insensitive form:
// a numeric token is the page, anything else is the status filter.
func optionalStatusAndPage(args []string) (status string, page int) {
	page = 1
	for _, arg := range args {
		if p, err := strconv.Atoi(arg); err == nil && p > 0 {
			page = p
		} else {
			status = arg
		}
	}
	return status, page
}

func (c *CLIHttp) readInputWithCancel(prompt, defaultValue string) (string, bool) {
	if defaultValue != "" {
		c.rl.SetPrompt(fmt.Sprintf("%s [%s]: ", prompt, defaultValue))
	} else {
		c.rl.SetPrompt(fmt.Sprintf("%s: ", prompt))
	}

	line, err := c.rl.Readline()
	c.rl.SetPrompt("> ") // Restore default prompt

	if err != nil {
		if err == readline.ErrInterrupt {
			// Ctrl+C pressed, cancel
			return "", true
		}
		// Other errors: use default
		return defaultValue, false
	}

	input := strings.TrimSpace(line)
	if input == "" && defaultValue != "" {
		return defaultValue, false
	}
	return input, false
}

func (c *CLIHttp) readInputPasswordWithCancel(prompt string) (string, bool) {
	c.rl.SetPrompt(fmt.Sprintf("%s: ", prompt))
	line, err := c.rl.ReadPassword("")
	c.rl.SetPrompt("> ") // Restore default prompt

	if err != nil {
		if err == readline.ErrInterrupt {
			// Ctrl+C pressed, cancel
			return "", true
		}
		return "", false
	}
	return string(line), false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
