package cmd

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/stagehand/packages/core/config"
	"github.com/abdul-hamid-achik/stagehand/packages/core/env"
	"github.com/abdul-hamid-achik/stagehand/packages/core/event"
	"github.com/abdul-hamid-achik/stagehand/packages/core/order"
	"github.com/abdul-hamid-achik/stagehand/packages/core/runner"
	"github.com/abdul-hamid-achik/stagehand/packages/core/suite"
	"github.com/abdul-hamid-achik/stagehand/packages/coverage"
	"github.com/abdul-hamid-achik/stagehand/packages/export/metrics"
	"github.com/abdul-hamid-achik/stagehand/packages/history"
	"github.com/abdul-hamid-achik/stagehand/packages/manifest"
	"github.com/abdul-hamid-achik/stagehand/packages/modules"
	"github.com/abdul-hamid-achik/stagehand/packages/notify"
	"github.com/abdul-hamid-achik/stagehand/packages/output"
	"github.com/abdul-hamid-achik/stagehand/packages/results"
	"github.com/abdul-hamid-achik/stagehand/packages/timing"
)

var runCmd = &cobra.Command{
	Use:   "run [manifest|directory...]",
	Short: "Run scenario suites from manifest files",
	Long: `Run scenario suites defined in *.suite.yaml manifests.

With no arguments the directories listed in the project configuration are
searched (default: the current directory).

Examples:
  stagehand run
  stagehand run smoke.suite.yaml
  stagehand run ./suites/ --groups smoke
  stagehand run ./suites/ --bail --output junit --output-file report.xml
  stagehand run ./suites/ --watch --metrics-port 9090`,
	Args: cobra.ArbitraryArgs,
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond
)

var (
	configFlag     string
	envFileFlag    string
	groupsFlag     string
	verboseFlag    int // 0=off, 1=-v, 2=-vv
	quietFlag      bool
	noColorFlag    bool
	outputFlag     string
	outputFileFlag string

	// Execution flags
	bailFlag        bool
	maxFailuresFlag int
	paceFlag        float64
	dryRunFlag      bool
	watchFlag       bool

	// Report flags
	timingFlag   bool
	coverageFlag bool

	// History flags
	noHistoryFlag   bool
	historyFileFlag string

	// Metrics flags
	metricsPortFlag int
	metricsFileFlag string

	// Notification flags
	notifyFlag       string
	notifyOnFlag     string
	slackWebhookFlag string
	slackChannelFlag string
	teamsWebhookFlag string
)

func init() {
	// Core flags
	runCmd.Flags().StringVar(&configFlag, "config", getEnvString("STAGEHAND_CONFIG", ""), "Path to config file (env: STAGEHAND_CONFIG)")
	runCmd.Flags().StringVar(&envFileFlag, "env-file", getEnvString("STAGEHAND_ENV_FILE", ""), "Load variables from a dotenv file before running (env: STAGEHAND_ENV_FILE)")
	runCmd.Flags().StringVarP(&groupsFlag, "groups", "g", getEnvString("STAGEHAND_GROUPS", ""), "Run only scenarios in these groups (comma-separated) (env: STAGEHAND_GROUPS)")

	// Output flags
	runCmd.Flags().CountVarP(&verboseFlag, "verbose", "v", "Verbose output (-v, -vv for more detail)")
	runCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", getEnvBool("STAGEHAND_QUIET", false), "Suppress live progress output (env: STAGEHAND_QUIET)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("STAGEHAND_NO_COLOR", false), "Disable colored output (env: STAGEHAND_NO_COLOR)")
	runCmd.Flags().StringVarP(&outputFlag, "output", "o", getEnvString("STAGEHAND_OUTPUT", "console"), "Output format: console, json, junit, tap (env: STAGEHAND_OUTPUT)")
	runCmd.Flags().StringVar(&outputFileFlag, "output-file", getEnvString("STAGEHAND_OUTPUT_FILE", ""), "Write output to file (default: stdout) (env: STAGEHAND_OUTPUT_FILE)")

	// Execution flags
	runCmd.Flags().BoolVar(&bailFlag, "bail", getEnvBool("STAGEHAND_BAIL", false), "Stop on first failure (env: STAGEHAND_BAIL)")
	runCmd.Flags().IntVar(&maxFailuresFlag, "max-failures", getEnvInt("STAGEHAND_MAX_FAILURES", 0), "Stop a suite after this many failures, 0 for no limit (env: STAGEHAND_MAX_FAILURES)")
	runCmd.Flags().Float64Var(&paceFlag, "pace", 0, "Throttle to at most this many test starts per second, 0 for unthrottled")
	runCmd.Flags().BoolVar(&dryRunFlag, "dry-run", false, "Resolve and show what would run without executing")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch manifests for changes and re-run suites")

	// Report flags
	runCmd.Flags().BoolVar(&timingFlag, "timing", getEnvBool("STAGEHAND_TIMING", false), "Print duration statistics after the run (env: STAGEHAND_TIMING)")
	runCmd.Flags().BoolVar(&coverageFlag, "coverage", getEnvBool("STAGEHAND_COVERAGE", false), "Collect and report capability coverage (env: STAGEHAND_COVERAGE)")

	// History flags
	runCmd.Flags().BoolVar(&noHistoryFlag, "no-history", getEnvBool("STAGEHAND_NO_HISTORY", false), "Do not record this run in the history store (env: STAGEHAND_NO_HISTORY)")
	runCmd.Flags().StringVar(&historyFileFlag, "history-file", getEnvString("STAGEHAND_HISTORY_FILE", ""), "Path to the history database (env: STAGEHAND_HISTORY_FILE)")

	// Metrics flags
	runCmd.Flags().IntVar(&metricsPortFlag, "metrics-port", getEnvInt("STAGEHAND_METRICS_PORT", 0), "Serve Prometheus metrics on this port, 0 to disable (env: STAGEHAND_METRICS_PORT)")
	runCmd.Flags().StringVar(&metricsFileFlag, "metrics-file", getEnvString("STAGEHAND_METRICS_FILE", ""), "Write run metrics JSON to file (env: STAGEHAND_METRICS_FILE)")

	// Notification flags
	runCmd.Flags().StringVar(&notifyFlag, "notify", getEnvString("STAGEHAND_NOTIFY", ""), "Notification services (comma-separated: slack, teams) (env: STAGEHAND_NOTIFY)")
	runCmd.Flags().StringVar(&notifyOnFlag, "notify-on", getEnvString("STAGEHAND_NOTIFY_ON", "failure"), "When to notify: always, failure, success, recovery (env: STAGEHAND_NOTIFY_ON)")
	runCmd.Flags().StringVar(&slackWebhookFlag, "slack-webhook", getEnvString("SLACK_WEBHOOK", ""), "Slack webhook URL (env: SLACK_WEBHOOK)")
	runCmd.Flags().StringVar(&slackChannelFlag, "slack-channel", getEnvString("SLACK_CHANNEL", ""), "Slack channel override (env: SLACK_CHANNEL)")
	runCmd.Flags().StringVar(&teamsWebhookFlag, "teams-webhook", getEnvString("TEAMS_WEBHOOK", ""), "Microsoft Teams webhook URL (env: TEAMS_WEBHOOK)")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// Formatter renders finished suite results in one output format.
type Formatter interface {
	Format(s results.Summary) error
	FormatError(err error)
}

// Flusher is implemented by formatters that buffer results and write the
// final document after the last suite.
type Flusher interface {
	Flush() error
}

// runSettings are the effective values for one invocation: flags merged
// over the project configuration.
type runSettings struct {
	envFile     string
	groups      []string
	output      string
	outputFile  string
	bail        bool
	maxFailures int
	pace        float64
	verbose     bool
	quiet       bool
	noColor     bool
	timing      bool
	coverage    bool
	history     bool
	historyFile string
	metricsPort int
	metricsFile string
	services    []string
	notifyOn    string
	slackHook   string
	slackChan   string
	teamsHook   string
	workdir     string
}

// Config file values fill in flags still at their defaults, so explicit
// flags and env-derived defaults win over the project file.
func settingString(flagVal, flagDefault, cfgVal string) string {
	if flagVal != flagDefault || cfgVal == "" {
		return flagVal
	}
	return cfgVal
}

func settingInt(flagVal, cfgVal int) int {
	if flagVal != 0 || cfgVal == 0 {
		return flagVal
	}
	return cfgVal
}

func resolveSettings(cfg *config.Config) runSettings {
	rs := runSettings{
		envFile:     settingString(envFileFlag, "", cfg.EnvFile),
		groups:      splitList(settingString(groupsFlag, "", strings.Join(cfg.Groups, ","))),
		output:      strings.ToLower(settingString(outputFlag, "console", cfg.Output)),
		outputFile:  settingString(outputFileFlag, "", cfg.OutputFile),
		bail:        bailFlag || cfg.GetBail(),
		maxFailures: settingInt(maxFailuresFlag, cfg.MaxFailures),
		pace:        paceFlag,
		verbose:     verboseFlag > 0 || cfg.GetVerbose(),
		quiet:       quietFlag,
		noColor:     noColorFlag || quietFlag || cfg.GetNoColor(),
		timing:      timingFlag || cfg.GetTiming(),
		coverage:    coverageFlag || cfg.GetCoverage(),
		history:     !noHistoryFlag && cfg.GetHistoryEnabled(),
		historyFile: settingString(historyFileFlag, "", cfg.History.File),
		metricsPort: settingInt(metricsPortFlag, cfg.Metrics.Port),
		metricsFile: settingString(metricsFileFlag, "", cfg.Metrics.File),
		services:    splitList(notifyFlag),
		notifyOn:    settingString(notifyOnFlag, "failure", cfg.Notify.On),
		slackHook:   settingString(slackWebhookFlag, "", cfg.Notify.SlackWebhook),
		slackChan:   slackChannelFlag,
		teamsHook:   settingString(teamsWebhookFlag, "", cfg.Notify.TeamsWebhook),
		workdir:     cfg.Workdir,
	}
	if rs.pace == 0 {
		rs.pace = cfg.Pace
	}
	if rs.historyFile == "" {
		rs.historyFile = history.DefaultFile
	}
	return rs
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

// newFormatter builds the formatter for the selected output format. The
// machine formats buffer until Flush; watch mode calls this again before
// each pass so every pass writes a complete document.
func (rs runSettings) newFormatter(w io.Writer) Formatter {
	switch rs.output {
	case "json":
		opts := []output.JSONOption{}
		if w != nil {
			opts = append(opts, output.JSONWithWriter(w))
		}
		return output.NewJSONFormatter(opts...)
	case "junit":
		opts := []output.JUnitOption{}
		if w != nil {
			opts = append(opts, output.JUnitWithWriter(w))
		}
		return output.NewJUnitFormatter(opts...)
	case "tap":
		opts := []output.TAPOption{}
		if w != nil {
			opts = append(opts, output.TAPWithWriter(w))
		}
		return output.NewTAPFormatter(opts...)
	default: // "console"
		consoleOpts := []output.ConsoleOption{
			output.WithVerbose(rs.verbose),
			output.WithNoColor(rs.noColor),
		}
		if w != nil {
			consoleOpts = append(consoleOpts, output.WithWriter(w))
		}
		return output.NewConsoleFormatter(consoleOpts...)
	}
}

// observers are the run-level collaborators shared by every suite in one
// invocation: history store, metrics, timing, coverage and notifications.
type observers struct {
	store     *history.Store
	recorder  *metrics.Recorder
	jsonOut   *metrics.JSONExporter
	tracker   *timing.Tracker
	collector *coverage.Collector
	modules   map[string]suite.Module
	notifier  *notify.Manager
	seeded    bool
}

func (rs runSettings) newObservers(cmd *cobra.Command) (*observers, func(), error) {
	obs := &observers{modules: make(map[string]suite.Module)}
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	if rs.history {
		store, err := history.Open(rs.historyFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: run history disabled: %v\n", err)
		} else {
			obs.store = store
			cleanups = append(cleanups, func() { _ = store.Close() })
		}
	}

	if rs.timing || rs.metricsFile != "" {
		obs.tracker = timing.NewTracker()
	}
	if rs.coverage {
		obs.collector = coverage.NewCollector()
	}

	if rs.metricsPort > 0 {
		obs.recorder = metrics.NewRecorder()
		server := obs.recorder.Serve(fmt.Sprintf(":%d", rs.metricsPort))
		fmt.Fprintf(cmd.OutOrStdout(), "Metrics available at http://localhost:%d/metrics\n", rs.metricsPort)
		cleanups = append(cleanups, func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = server.Shutdown(ctx)
		})
	}
	if rs.metricsFile != "" {
		obs.jsonOut = metrics.NewJSONExporter(metrics.WithJSONFile(rs.metricsFile))
	}

	if len(rs.services) > 0 {
		var notifiers []notify.Notifier
		for _, service := range rs.services {
			switch strings.ToLower(service) {
			case "slack":
				if rs.slackHook == "" {
					cleanup()
					return nil, nil, fmt.Errorf("--slack-webhook is required when using --notify slack")
				}
				slackOpts := []notify.SlackOption{}
				if rs.slackChan != "" {
					slackOpts = append(slackOpts, notify.WithSlackChannel(rs.slackChan))
				}
				notifiers = append(notifiers, notify.NewSlackNotifier(rs.slackHook, slackOpts...))

			case "teams":
				if rs.teamsHook == "" {
					cleanup()
					return nil, nil, fmt.Errorf("--teams-webhook is required when using --notify teams")
				}
				notifiers = append(notifiers, notify.NewTeamsNotifier(rs.teamsHook))
			}
		}

		if len(notifiers) > 0 {
			obs.notifier = notify.NewManager(notify.NotifyOn(rs.notifyOn), notifiers...)
		}
	}

	return obs, cleanup, nil
}

// observe routes one finished suite through history, metrics and
// notifications.
func (o *observers) observe(summary results.Summary) {
	if o.store != nil {
		// Seed recovery tracking from the run that came before this one,
		// before this run is written.
		if o.notifier != nil && !o.seeded {
			if success, found, err := o.store.LastSuccess(summary.Suite); err == nil && found {
				o.notifier.SetLastState(success)
			}
			o.seeded = true
		}
		if err := o.store.Record(summary); err != nil {
			fmt.Fprintf(os.Stderr, "warning: recording run history: %v\n", err)
		}
	}

	if o.recorder != nil {
		o.recorder.ObserveSummary(summary)
	}
	if o.jsonOut != nil {
		if o.tracker != nil {
			o.jsonOut.SetTiming(o.tracker.Summary())
		}
		if err := o.jsonOut.Export(summary); err != nil {
			fmt.Fprintf(os.Stderr, "warning: exporting metrics: %v\n", err)
		}
	}

	if o.notifier != nil {
		if err := o.notifier.Notify(notify.FromResults(summary)); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to send notification: %v\n", err)
		}
	}
}

// interrupts routes SIGINT and SIGTERM to the aggregator of the suite that
// is currently running, so the loop stops at the next test boundary. With
// no suite running, or on a second signal, the process exits immediately.
type interrupts struct {
	mu        sync.Mutex
	agg       *results.Aggregator
	requested bool
}

func (h *interrupts) watch() {
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		h.mu.Lock()
		agg := h.agg
		h.requested = true
		h.mu.Unlock()
		if agg == nil {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, "\nInterrupt received, stopping after the current test...")
		agg.Stop()
		<-ch
		os.Exit(130)
	}()
}

func (h *interrupts) set(agg *results.Aggregator) {
	h.mu.Lock()
	h.agg = agg
	h.mu.Unlock()
}

func (h *interrupts) interrupted() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.requested
}

func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitConfigError)
	}
	rs := resolveSettings(cfg)

	// Variables interpolate against the process environment, so the dotenv
	// file has to land before any manifest is built.
	if rs.envFile != "" {
		if _, err := env.LoadAndApply(rs.envFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(ExitConfigError)
		}
	}

	roots := args
	if len(roots) == 0 {
		roots = cfg.Suites
	}
	paths, err := discoverAll(roots)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no suite manifests found")
	}

	var outWriter io.Writer
	if rs.outputFile != "" {
		file, err := os.Create(rs.outputFile)
		if err != nil {
			return fmt.Errorf("cannot create output file: %w", err)
		}
		defer file.Close()
		outWriter = file
	}

	fmtr := rs.newFormatter(outWriter)
	if c, ok := fmtr.(*output.ConsoleFormatter); ok && !rs.quiet {
		c.FormatHeader(version)
	}

	if dryRunFlag {
		return dryRun(cmd, paths, rs)
	}

	obs, cleanup, err := rs.newObservers(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	intr := &interrupts{}
	intr.watch()

	failed, manifestErrs := runAllSuites(paths, rs, fmtr, obs, intr)

	if fl, ok := fmtr.(Flusher); ok {
		if err := fl.Flush(); err != nil {
			return fmt.Errorf("error writing output: %w", err)
		}
	}
	reportExtras(cmd, rs, obs)

	if !watchFlag {
		switch {
		case manifestErrs:
			os.Exit(ExitManifestError)
		case failed:
			os.Exit(ExitTestFailure)
		}
		return nil
	}

	return watchLoop(cmd, roots, paths, rs, obs, intr)
}

// runAllSuites executes every manifest in order. It reports whether any
// suite had failures and whether any manifest could not be loaded.
func runAllSuites(paths []string, rs runSettings, fmtr Formatter, obs *observers, intr *interrupts) (failed, manifestErrs bool) {
	ctx := context.Background()
	for _, path := range paths {
		summary, err := runOne(ctx, path, rs, fmtr, obs, intr)
		if err != nil {
			fmtr.FormatError(err)
			manifestErrs = true
			if rs.bail {
				break
			}
			continue
		}
		if !summary.Success() {
			failed = true
			if rs.bail {
				break
			}
		}
		if intr.interrupted() {
			break
		}
	}
	return failed, manifestErrs
}

// runOne loads one manifest and executes its suite, reporting through the
// formatter and the run-level observers.
func runOne(ctx context.Context, path string, rs runSettings, fmtr Formatter, obs *observers, intr *interrupts) (results.Summary, error) {
	m, err := manifest.ParseFile(path)
	if err != nil {
		return results.Summary{}, err
	}

	workdir := rs.workdir
	if workdir == "" || workdir == "." {
		workdir = filepath.Dir(path)
	}
	mods := modules.Builtin(workdir)

	registry, err := manifest.Build(m,
		manifest.WithModules(mods),
		manifest.WithWarnFunc(func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
		}),
	)
	if err != nil {
		return results.Summary{}, fmt.Errorf("%s: %w", path, err)
	}

	if rs.coverage {
		registry.SetCollectCoverage(true)
	}
	if len(rs.groups) > 0 {
		markFiltered(registry, rs.groups)
	}
	if err := order.Sort(registry); err != nil {
		return results.Summary{}, fmt.Errorf("%s: %w", path, err)
	}

	dispatcher := event.NewDispatcher()
	if c, ok := fmtr.(*output.ConsoleFormatter); ok && !rs.quiet {
		c.Attach(dispatcher)
	}
	if obs.tracker != nil {
		obs.tracker.Attach(dispatcher)
	}
	if obs.collector != nil && registry.CollectCoverage() {
		obs.collector.Attach(dispatcher)
		for name, mod := range mods {
			obs.modules[name] = mod
		}
	}

	aggOpts := []results.Option{results.WithSink(dispatcher)}
	if rs.bail {
		aggOpts = append(aggOpts, results.WithStopOnFailure())
	}
	if rs.maxFailures > 0 {
		aggOpts = append(aggOpts, results.WithMaxFailures(rs.maxFailures))
	}
	agg := results.New(m.Suite, aggOpts...)

	loopCfg := runner.ConfigFromRegistry(m.Suite, registry)
	loopCfg.Pace = rs.pace

	intr.set(agg)
	err = runner.New(loopCfg).Run(ctx, registry.Tests(), agg, dispatcher)
	intr.set(nil)
	if err != nil {
		return results.Summary{}, fmt.Errorf("%s: %w", path, err)
	}

	// The loop leaves the end-of-suite signal to its caller.
	dispatcher.Publish(event.SuiteEnd, event.Event{Suite: m.Suite})

	summary := agg.Summary()
	if ferr := fmtr.Format(summary); ferr != nil {
		fmt.Fprintf(os.Stderr, "warning: formatting results: %v\n", ferr)
	}
	obs.observe(summary)
	return summary, nil
}

// markFiltered skips scenarios outside the group filter so they are
// recorded rather than silently dropped.
func markFiltered(registry *suite.Registry, groups []string) {
	want := make(map[string]struct{}, len(groups))
	for _, g := range groups {
		want[g] = struct{}{}
	}
	for _, t := range registry.Tests() {
		if t.Metadata().Blocked() {
			continue
		}
		matched := false
		for _, g := range t.Groups() {
			if _, ok := want[g]; ok {
				matched = true
				break
			}
		}
		if !matched {
			t.Metadata().MarkSkipped("filtered out")
		}
	}
}

// discoverAll expands files and directories into the list of suite
// manifests beneath them, each path once.
func discoverAll(roots []string) ([]string, error) {
	var paths []string
	seen := make(map[string]struct{})
	for _, root := range roots {
		found, err := manifest.Discover(root)
		if err != nil {
			return nil, err
		}
		for _, p := range found {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			paths = append(paths, p)
		}
	}
	return paths, nil
}

// dryRun resolves each manifest and prints what would run, in execution
// order, without running anything.
func dryRun(cmd *cobra.Command, paths []string, rs runSettings) error {
	w := cmd.OutOrStdout()
	for _, path := range paths {
		m, err := manifest.ParseFile(path)
		if err != nil {
			return err
		}
		registry, err := manifest.Build(m, manifest.WithModules(modules.Builtin(filepath.Dir(path))))
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if len(rs.groups) > 0 {
			markFiltered(registry, rs.groups)
		}
		if err := order.Sort(registry); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}

		fmt.Fprintf(w, "\n%s (%s):\n", m.Suite, path)
		for _, t := range registry.Tests() {
			meta := t.Metadata()
			switch {
			case meta.Skipped():
				reason := "skipped"
				if meta.SkipReason() != "" {
					reason = "skipped: " + meta.SkipReason()
				}
				fmt.Fprintf(w, "  - %s (%s)\n", t.Name(), reason)
			case meta.Incomplete():
				fmt.Fprintf(w, "  - %s (incomplete)\n", t.Name())
			default:
				fmt.Fprintf(w, "  - %s\n", t.Name())
			}
		}
	}
	return nil
}

// reportExtras prints the timing and coverage reports. They are skipped
// when a machine-readable format is going to stdout, so the document stays
// parseable.
func reportExtras(cmd *cobra.Command, rs runSettings, obs *observers) {
	if rs.output != "console" && rs.outputFile == "" {
		return
	}
	w := cmd.OutOrStdout()

	if rs.timing && obs.tracker != nil {
		printTiming(w, obs.tracker.Summary())
	}
	if obs.collector != nil {
		report := coverage.NewAnalyzer(obs.modules).Analyze(obs.collector.Calls())
		if rs.output == "json" {
			if text, err := report.FormatJSON(); err == nil {
				fmt.Fprintln(w, text)
			}
		} else {
			fmt.Fprint(w, report.FormatConsole())
		}
	}
}

func printTiming(w io.Writer, s timing.Summary) {
	if s.Count == 0 {
		return
	}
	fmt.Fprintf(w, "Timing:\n")
	fmt.Fprintf(w, "  tests: %d  total: %dms\n", s.Count, s.Total.Milliseconds())
	fmt.Fprintf(w, "  min: %dms  mean: %dms  max: %dms\n",
		s.Min.Milliseconds(), s.Mean.Milliseconds(), s.Max.Milliseconds())
	fmt.Fprintf(w, "  p50: %dms  p95: %dms  p99: %dms\n",
		s.P50.Milliseconds(), s.P95.Milliseconds(), s.P99.Milliseconds())

	n := len(s.Slowest)
	if n > 5 {
		n = 5
	}
	if n > 0 {
		fmt.Fprintf(w, "  slowest:\n")
		for i := 0; i < n; i++ {
			fmt.Fprintf(w, "    %d. %s (%dms)\n", i+1, s.Slowest[i].Test, s.Slowest[i].Elapsed.Milliseconds())
		}
	}
	fmt.Fprintln(w)
}

// watchLoop re-runs the suites whenever a manifest beneath the original
// roots changes. Manifests are re-discovered on each pass so new files are
// picked up.
func watchLoop(cmd *cobra.Command, roots, paths []string, rs runSettings, obs *observers, intr *interrupts) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watchedDirs := make(map[string]bool)
	for _, path := range paths {
		dir := filepath.Dir(path)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to watch %s: %v\n", dir, err)
			}
			watchedDirs[dir] = true
		}
	}

	// Also watch the original roots if they're directories
	for _, root := range roots {
		info, err := os.Stat(root)
		if err == nil && info.IsDir() {
			_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() && !watchedDirs[path] {
					_ = watcher.Add(path)
					watchedDirs[path] = true
				}
				return nil
			})
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")

	// Debounce timer for rapid file changes
	var debounceTimer *time.Timer
	rerun := make(chan string, 1)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if (ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) && manifest.IsManifest(ev.Name) {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				name := ev.Name
				debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
					select {
					case rerun <- name:
					default:
					}
				})
			}

		case name := <-rerun:
			fmt.Fprintf(cmd.OutOrStdout(), "\n\nFile changed: %s\nRe-running suites...\n", name)

			// Machine formatters buffer per pass, so each pass gets a
			// fresh one.
			fmtr := rs.newFormatter(nil)
			paths, err := discoverAll(roots)
			if err != nil || len(paths) == 0 {
				fmt.Fprintf(os.Stderr, "warning: no suite manifests found\n")
				continue
			}
			runAllSuites(paths, rs, fmtr, obs, intr)
			if fl, ok := fmtr.(Flusher); ok {
				_ = fl.Flush()
			}
			reportExtras(cmd, rs, obs)
			if intr.interrupted() {
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "warning: watcher error: %v\n", err)
		}
	}
}
