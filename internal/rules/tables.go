package rules

import "github.com/envsense/envsense/internal/schema"

// The rule groups below are immutable for the lifetime of the process
// and safe to share by reference. Table order is part of the contract:
// equal-confidence agent rules tie-break first-in-table, so reordering
// a group is a behaviour change.

// Agents is the agent rule group. Selection is by confidence, ties
// resolved first-in-table (cursor beats replit-agent when both fire).
var Agents = []Rule{
	{
		ID:         "cursor",
		Confidence: schema.ConfidenceDirect,
		Indicators: []Indicator{{Key: "CURSOR_AGENT", Required: true}},
		Contexts:   []schema.Context{schema.ContextAgent},
	},
	{
		ID:         "claude-code",
		Confidence: schema.ConfidenceDirect,
		Indicators: []Indicator{{Key: "CLAUDECODE", Required: true}},
		Contexts:   []schema.Context{schema.ContextAgent},
	},
	{
		ID:         "cline",
		Confidence: schema.ConfidenceDirect,
		Indicators: []Indicator{{Key: "CLINE_ACTIVE", Required: true}},
		Contexts:   []schema.Context{schema.ContextAgent},
	},
	{
		ID:         "replit-agent",
		Confidence: schema.ConfidenceDirect,
		Indicators: []Indicator{{Key: "REPL_ID", Required: true}},
		Facets:     map[string]string{"host": "replit"},
		Contexts:   []schema.Context{schema.ContextAgent},
	},
	{
		ID:         "openhands",
		Confidence: schema.ConfidenceInferred,
		Indicators: []Indicator{{Key: "SANDBOX_", Prefix: true, Required: true}},
		Contexts:   []schema.Context{schema.ContextAgent},
	},
	{
		ID:         "aider",
		Confidence: schema.ConfidenceInferred,
		Indicators: []Indicator{{Key: "AIDER_", Prefix: true, Required: true}},
		Contexts:   []schema.Context{schema.ContextAgent},
	},
	{
		ID:         "unknown",
		Confidence: schema.ConfidenceHeuristic,
		Indicators: []Indicator{{Key: "IS_CODE_AGENT", Value: "1", Required: true}},
		Contexts:   []schema.Context{schema.ContextAgent},
	},
}

// Hosts is the host rule group, consulted only when no agent rule
// matched. First match wins; the rule ID is the host name.
var Hosts = []Rule{
	{
		ID:         "replit",
		Confidence: schema.ConfidenceDirect,
		Indicators: []Indicator{{Key: "REPL_ID", Required: true}},
	},
	{
		ID:         "codespaces",
		Confidence: schema.ConfidenceDirect,
		Indicators: []Indicator{{Key: "CODESPACES", Value: "true", Required: true}},
	},
	{
		ID:         "gitpod",
		Confidence: schema.ConfidenceDirect,
		Indicators: []Indicator{{Key: "GITPOD_WORKSPACE_ID", Required: true}},
	},
}

// IDEs is the IDE rule group. Selection is by priority, not confidence:
// the cursor rule outranks plain vscode when both conditions hold.
var IDEs = []Rule{
	{
		ID:         "cursor",
		Confidence: schema.ConfidenceDirect,
		Indicators: []Indicator{
			{Key: "TERM_PROGRAM", Value: "vscode", Required: true, Priority: 3},
			{Key: "CURSOR_TRACE_ID", Required: true, Priority: 3},
		},
		Contexts: []schema.Context{schema.ContextIDE},
	},
	{
		ID:         "vscode-insiders",
		Confidence: schema.ConfidenceDirect,
		Indicators: []Indicator{
			{Key: "TERM_PROGRAM", Value: "vscode", Required: true, Priority: 2},
			{Key: "TERM_PROGRAM_VERSION", Contains: "insider", Required: true, Priority: 2},
		},
		Contexts: []schema.Context{schema.ContextIDE},
	},
	{
		ID:         "vscode",
		Confidence: schema.ConfidenceDirect,
		Indicators: []Indicator{
			{Key: "TERM_PROGRAM", Value: "vscode", Required: true, Priority: 1},
		},
		Contexts: []schema.Context{schema.ContextIDE},
	},
	{
		ID:         "jetbrains",
		Confidence: schema.ConfidenceDirect,
		Indicators: []Indicator{
			{Key: "TERMINAL_EMULATOR", Contains: "JetBrains", Required: true, Priority: 1},
		},
		Contexts: []schema.Context{schema.ContextIDE},
	},
	{
		ID:         "zed",
		Confidence: schema.ConfidenceDirect,
		Indicators: []Indicator{
			{Key: "TERM_PROGRAM", Value: "zed", Required: true, Priority: 1},
		},
		Contexts: []schema.Context{schema.ContextIDE},
	},
}

// CIs is the CI rule group, keyed on each vendor's canonical variable.
// Selection is by confidence; the generic CI=true fallback sits at
// heuristic confidence so any vendor rule outranks it.
var CIs = []Rule{
	ciRule("github_actions", Indicator{Key: "GITHUB_ACTIONS", Required: true}),
	ciRule("gitlab_ci", Indicator{Key: "GITLAB_CI", Required: true}),
	ciRule("circleci", Indicator{Key: "CIRCLECI", Required: true}),
	ciRule("jenkins", Indicator{Key: "JENKINS_URL", Required: true}),
	ciRule("buildkite", Indicator{Key: "BUILDKITE", Required: true}),
	ciRule("teamcity", Indicator{Key: "TEAMCITY_VERSION", Required: true}),
	ciRule("azure_pipelines", Indicator{Key: "TF_BUILD", Required: true}),
	ciRule("bitbucket_pipelines", Indicator{Key: "BITBUCKET_BUILD_NUMBER", Required: true}),
	ciRule("appveyor", Indicator{Key: "APPVEYOR", Required: true}),
	ciRule("aws_codebuild", Indicator{Key: "CODEBUILD_BUILD_ID", Required: true}),
	ciRule("travis", Indicator{Key: "TRAVIS", Value: "true", Required: true}),
	ciRule("drone", Indicator{Key: "DRONE", Value: "true", Required: true}),
	{
		ID:         "generic",
		Confidence: schema.ConfidenceHeuristic,
		Indicators: []Indicator{
			{Key: "CI", Value: "true"},
			{Key: "CI", Value: "1"},
		},
		Contexts: []schema.Context{schema.ContextCI},
	},
}

func ciRule(id string, ind Indicator) Rule {
	return Rule{
		ID:         id,
		Confidence: schema.ConfidenceDirect,
		Indicators: []Indicator{ind},
		Contexts:   []schema.Context{schema.ContextCI},
	}
}

// CIVendor carries the fixed vendor slug and human-readable name for a
// CI rule identifier.
type CIVendor struct {
	Vendor string
	Name   string
}

// CIVendors maps CI rule IDs to vendor info.
var CIVendors = map[string]CIVendor{
	"github_actions":      {Vendor: "github", Name: "GitHub Actions"},
	"gitlab_ci":           {Vendor: "gitlab", Name: "GitLab CI"},
	"circleci":            {Vendor: "circle", Name: "CircleCI"},
	"jenkins":             {Vendor: "jenkins", Name: "Jenkins"},
	"buildkite":           {Vendor: "buildkite", Name: "Buildkite"},
	"teamcity":            {Vendor: "jetbrains", Name: "TeamCity"},
	"azure_pipelines":     {Vendor: "azure", Name: "Azure Pipelines"},
	"bitbucket_pipelines": {Vendor: "bitbucket", Name: "Bitbucket Pipelines"},
	"appveyor":            {Vendor: "appveyor", Name: "AppVeyor"},
	"aws_codebuild":       {Vendor: "aws", Name: "AWS CodeBuild"},
	"travis":              {Vendor: "travis", Name: "Travis CI"},
	"drone":               {Vendor: "drone", Name: "Drone"},
	"generic":             {Vendor: "generic", Name: "Generic CI"},
}
