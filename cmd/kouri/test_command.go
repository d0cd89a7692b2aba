package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"kouri/internal/diagnose"
	"kouri/internal/probe"
)

const testServerName = "实际 AI 对话服务器"

type testReport struct {
	URL        string  `json:"url"`
	Reachable  bool    `json:"reachable"`
	LatencyMS  float64 `json:"latency_ms"`
	ProbeError string  `json:"probe_error,omitempty"`
	StatusCode int     `json:"status_code"`
	Response   any     `json:"response"`
}

func newTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Probe the endpoint and send a test chat message",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTest(cmd, ctx)
		},
	}
}

func runTest(cmd *cobra.Command, ctx *commandContext) error {
	opCtx := operationContext(cmd, "test")
	cfg := ctx.configValue()
	if err := cfg.Complete(); err != nil {
		return ctx.report(opCtx, cmd, testServerName, err)
	}

	prober := probe.New(nil)
	result := prober.Probe(opCtx, cfg.BaseURL)
	report := testReport{URL: result.URL, Reachable: result.OK, LatencyMS: result.Millis()}
	if result.Err != nil {
		report.ProbeError = diagnose.Classify(result.Err, cfg.BaseURL).Message
	}

	raw, err := ctx.client(cmd).TestStandardAPI(opCtx)
	if err != nil {
		return ctx.report(opCtx, cmd, testServerName, err)
	}
	report.StatusCode = raw.StatusCode
	parsed, jsonErr := raw.JSON()
	if jsonErr != nil {
		return fmt.Errorf("解析%s响应时出现 JSON 解析错误: %w。响应内容: %s", testServerName, jsonErr, raw.Body)
	}
	report.Response = parsed

	if ctx.flags.json {
		return writeJSON(cmd, report)
	}
	return printTestReport(cmd, newRenderer(cmd.OutOrStdout(), cfg.Theme), report)
}

func printTestReport(cmd *cobra.Command, r renderer, report testReport) error {
	out := cmd.OutOrStdout()
	for _, line := range r.sectionHeader("kouri test") {
		fmt.Fprintln(out, line)
	}
	if report.Reachable {
		fmt.Fprintln(out, r.statusLine("连接", statusOK, fmt.Sprintf("响应时间: %.2f ms", report.LatencyMS)))
	} else {
		fmt.Fprintln(out, r.statusLine("连接", statusWarn, report.ProbeError))
	}
	fmt.Fprintln(out, r.statusLine("对话", statusOK, fmt.Sprintf("%s响应正常 (HTTP %d)", testServerName, report.StatusCode)))
	body, err := json.MarshalIndent(report.Response, "", "  ")
	if err != nil {
		return fmt.Errorf("format response: %w", err)
	}
	fmt.Fprintln(out, "响应内容:")
	fmt.Fprintln(out, string(body))
	return nil
}
