// Interactive terminal admission: redeem a module access code, answer the
// research consent form when the module asks for it, and print the result.
//
// Usage: go run scripts/join_module.go -student s1 [-code ABC123 | -join-url URL] [-o yaml]

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"modulegate_backend/internal/admission"
	"modulegate_backend/internal/apiclient"
	"modulegate_backend/internal/config"
	"modulegate_backend/internal/model"
	"modulegate_backend/pkg/logger"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

type summary struct {
	ModuleID     string   `yaml:"module_id"`
	ModuleName   string   `yaml:"module_name"`
	StudentID    string   `yaml:"student_id"`
	AccessTime   string   `yaml:"access_time"`
	Permissions  []string `yaml:"permissions"`
	Gate         string   `yaml:"gate"`
	WaiverStatus string   `yaml:"waiver_status,omitempty"`
}

func main() {
	configDir := flag.String("config", "configs", "directory holding config.yaml")
	studentID := flag.String("student", "", "student identifier")
	code := flag.String("code", "", "module access code")
	joinURL := flag.String("join-url", "", "join link containing the access code")
	output := flag.String("o", "text", "result format: text or yaml")
	verbose := flag.Bool("v", false, "log requests to stdout")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zl := zap.NewNop()
	if *verbose {
		zl = logger.New(cfg.Server.Mode, "")
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	client := apiclient.New(cfg.Client.BaseURL, cfg.Client.RequestTimeout(), apiclient.StaticToken(cfg.Client.Token))
	o := admission.NewOrchestrator(client, client, admission.NewMemorySession(), zl)
	o.OnRelease = func(r admission.Result) {
		fmt.Printf("\nAccess granted to %q.\n", r.Grant.ModuleName)
	}
	go func() {
		<-ctx.Done()
		o.Abandon()
	}()

	in := bufio.NewReader(os.Stdin)
	student := strings.TrimSpace(*studentID)
	if student == "" {
		student = prompt(in, "Student ID: ")
	}

	var res *admission.Result
	if *joinURL != "" {
		res, err = enterByURL(ctx, o, *joinURL, student)
	} else {
		raw := *code
		for {
			if raw == "" {
				raw = prompt(in, "Access code: ")
			}
			res, err = o.Enter(ctx, raw, student)
			if err == nil || !retryable(err) {
				break
			}
			fmt.Println(admission.Guidance(err))
			raw = ""
		}
	}
	if err != nil {
		fmt.Println(admission.Guidance(err))
		os.Exit(1)
	}

	for !res.Released {
		next, err := consentStep(ctx, o, in, res)
		if next != nil {
			res = next
		}
		if err != nil {
			fmt.Println(admission.Guidance(err))
			if flowEnded(err) {
				os.Exit(1)
			}
			if errors.Is(err, admission.ErrTransport) && res.Decision.State == admission.GateError {
				if r, retryErr := o.Retry(ctx); retryErr == nil {
					res = r
				}
			}
		}
	}

	printSummary(res, *output)
}

func enterByURL(ctx context.Context, o *admission.Orchestrator, joinURL, student string) (*admission.Result, error) {
	code, err := admission.CodeFromJoinURL(joinURL)
	if err != nil {
		return nil, err
	}
	return o.Enter(ctx, code, student)
}

// retryable reports errors the student can fix by typing another code.
func retryable(err error) bool {
	return errors.Is(err, admission.ErrCodeInvalid) || errors.Is(err, admission.ErrTransport)
}

// flowEnded reports errors after which the consent prompt cannot continue:
// the flow was abandoned, the grant is gone or the credential expired.
func flowEnded(err error) bool {
	return errors.Is(err, admission.ErrStaleFlow) ||
		errors.Is(err, admission.ErrNoGrant) ||
		errors.Is(err, admission.ErrCredentialExpired)
}

func consentStep(ctx context.Context, o *admission.Orchestrator, in *bufio.Reader, res *admission.Result) (*admission.Result, error) {
	if len(res.Selection) == 0 {
		fmt.Printf("\n%s asks for your research consent.\n\n", res.Module.Name)
		for _, b := range res.Blocks() {
			fmt.Println(renderBlock(b))
		}
		fmt.Println()
	}

	options := admission.Options()
	for i, opt := range options {
		mark := " "
		if len(res.Selection) == 1 && res.Selection[0] == opt.Status {
			mark = "*"
		}
		label := opt.Title
		if opt.Recommended {
			label += " (recommended)"
		}
		fmt.Printf("%s %d) %s\n     %s\n", mark, i+1, label, opt.Description)
	}

	answer := prompt(in, "Choose 1, 2 or 3 (enter keeps the marked choice): ")
	selection := res.Selection
	if answer != "" {
		n, err := strconv.Atoi(answer)
		if err != nil || n < 1 || n > len(options) {
			return res, admission.ErrValidation
		}
		selection = []model.WaiverStatus{options[n-1].Status}
	}

	next, err := o.SubmitConsent(ctx, selection...)
	if next == nil {
		next = res
	}
	return next, err
}

func renderBlock(b admission.Block) string {
	switch b.Kind {
	case admission.BlockHeading:
		return strings.ToUpper(b.Text)
	case admission.BlockSubheading:
		return b.Text + "\n" + strings.Repeat("-", len(b.Text))
	case admission.BlockBullet:
		return "  * " + b.Text
	case admission.BlockBlank:
		return ""
	default:
		return b.Text
	}
}

func printSummary(res *admission.Result, format string) {
	s := summary{
		ModuleID:   res.Grant.ModuleID,
		ModuleName: res.Grant.ModuleName,
		StudentID:  res.Grant.StudentID,
		AccessTime: res.Grant.IssuedAt.Format(time.RFC3339),
		Gate:       res.Decision.State.String(),
	}
	for _, p := range res.Grant.Permissions {
		s.Permissions = append(s.Permissions, string(p))
	}
	if res.Decision.Record != nil {
		s.WaiverStatus = res.Decision.Record.WaiverStatus.String()
	}

	if format == "yaml" {
		out, err := yaml.Marshal(s)
		if err != nil {
			log.Fatalf("Failed to encode result: %v", err)
		}
		fmt.Print(string(out))
		return
	}

	fmt.Printf("module:      %s (%s)\n", s.ModuleName, s.ModuleID)
	fmt.Printf("student:     %s\n", s.StudentID)
	fmt.Printf("consent:     %s %s\n", s.Gate, s.WaiverStatus)
	fmt.Printf("permissions: %s\n", strings.Join(s.Permissions, ", "))
}

func prompt(in *bufio.Reader, label string) string {
	fmt.Print(label)
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		fmt.Println()
		os.Exit(1)
	}
	return strings.TrimSpace(line)
}
