package model

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var readTools = map[string]bool{"Read": true, "NotebookRead": true, "ReadFile": true}
var writeTools = map[string]bool{"Write": true, "Edit": true, "MultiEdit": true, "NotebookEdit": true}
var executeTools = map[string]bool{"Bash": true, "Task": true, "BashOutput": true, "KillShell": true}
var searchTools = map[string]bool{"Grep": true, "Glob": true, "WebFetch": true, "WebSearch": true}

// ClassifyTool maps a tool name to its ObservationType per the fixed lookup.
func ClassifyTool(toolName string) ObservationType {
	switch {
	case readTools[toolName]:
		return ObsRead
	case writeTools[toolName]:
		return ObsWrite
	case executeTools[toolName]:
		return ObsExecute
	case searchTools[toolName]:
		return ObsSearch
	default:
		return ObsOther
	}
}

// DerivationInput bundles the raw material a template derivation works from.
type DerivationInput struct {
	ToolName         string
	ToolInputRaw     string // canonical string, may be JSON or plain text
	ToolResponseRaw  string
	LatestPromptText string
}

// Derived holds every field the template-only pipeline fills in on an
// Observation.
type Derived struct {
	Type          ObservationType
	Title         string
	Subtitle      string
	Narrative     string
	Facts         []string
	Concepts      []string
	FilesRead     []string
	FilesModified []string
}

const (
	maxFacts        = 5
	maxFactLen      = 200
	maxConcepts     = 8
	maxConceptLen   = 50
)

// Derive computes every template-derived field deterministically from the
// raw tool payload. Identical inputs always produce byte-identical output.
func Derive(in DerivationInput) Derived {
	payload := DecodePayload(in.ToolInputRaw)
	typ := ClassifyTool(in.ToolName)

	title, subtitle, narrative := deriveText(in.ToolName, typ, payload)

	var filesRead, filesModified []string
	if path := StringField(payload, "file_path"); path != "" {
		switch typ {
		case ObsRead:
			filesRead = append(filesRead, path)
		case ObsWrite:
			filesModified = append(filesModified, path)
		}
	}

	facts := deriveFacts(in.ToolName, typ, payload, in.ToolResponseRaw)
	concepts := deriveConcepts(in.ToolName, typ, payload, in.ToolInputRaw, in.LatestPromptText, in.ToolResponseRaw)

	return Derived{
		Type:          typ,
		Title:         title,
		Subtitle:      subtitle,
		Narrative:     narrative,
		Facts:         capStrings(facts, maxFacts, maxFactLen),
		Concepts:      capStrings(concepts, maxConcepts, maxConceptLen),
		FilesRead:     filesRead,
		FilesModified: filesModified,
	}
}

func deriveText(toolName string, typ ObservationType, payload map[string]any) (title, subtitle, narrative string) {
	path := StringField(payload, "file_path")
	command := StringField(payload, "command")
	pattern := StringField(payload, "pattern")
	query := StringField(payload, "query")
	url := StringField(payload, "url")

	switch toolName {
	case "Read", "NotebookRead":
		title = fmt.Sprintf("Read %s", base(path))
		subtitle = path
		narrative = fmt.Sprintf("Read the contents of %s.", orUnknown(path))
	case "Write":
		title = fmt.Sprintf("Write %s", base(path))
		subtitle = path
		narrative = fmt.Sprintf("Wrote new contents to %s.", orUnknown(path))
	case "Edit", "MultiEdit", "NotebookEdit":
		title = fmt.Sprintf("Edit %s", base(path))
		subtitle = path
		narrative = fmt.Sprintf("Edited %s.", orUnknown(path))
	case "Bash":
		title = "Run command"
		subtitle = command
		narrative = fmt.Sprintf("Ran command: %s", orUnknown(command))
	case "Grep":
		title = fmt.Sprintf("Search for %q", pattern)
		subtitle = pattern
		narrative = fmt.Sprintf("Searched for pattern %q.", pattern)
	case "Glob":
		title = fmt.Sprintf("Find files matching %q", pattern)
		subtitle = pattern
		narrative = fmt.Sprintf("Searched for files matching %q.", pattern)
	case "WebSearch":
		title = fmt.Sprintf("Search the web for %q", query)
		subtitle = query
		narrative = fmt.Sprintf("Searched the web for %q.", query)
	case "WebFetch":
		title = fmt.Sprintf("Fetch %s", url)
		subtitle = url
		narrative = fmt.Sprintf("Fetched %s.", orUnknown(url))
	default:
		title = toolName
		subtitle = string(typ)
		narrative = fmt.Sprintf("Invoked tool %s.", toolName)
	}
	return
}

var errorSubstrings = []string{"error", "exception", "traceback", "panic", "failed"}
var benignErrorForms = []string{"0 errors", "no errors", "error_handling", "error handling"}
var passSubstrings = []string{"tests passed", "all tests passed", "passed", "pass"}

func deriveFacts(toolName string, typ ObservationType, payload map[string]any, response string) []string {
	var facts []string

	if path := StringField(payload, "file_path"); path != "" {
		switch typ {
		case ObsRead:
			facts = append(facts, fmt.Sprintf("Read file %s", path))
		case ObsWrite:
			facts = append(facts, fmt.Sprintf("Modified file %s", path))
		}
	}

	if typ == ObsWrite && (toolName == "Edit" || toolName == "MultiEdit") {
		oldStr := StringField(payload, "old_string")
		newStr := StringField(payload, "new_string")
		facts = append(facts, diffFact(StringField(payload, "file_path"), oldStr, newStr))
	}

	lower := strings.ToLower(response)
	if typ == ObsExecute {
		if containsAny(lower, passSubstrings) && !containsAny(lower, errorSubstrings) {
			facts = append(facts, "Tests passed")
		}
		if containsAny(lower, errorSubstrings) && !containsAny(lower, benignErrorForms) {
			facts = append(facts, "Errors encountered")
		}
	}

	return facts
}

func diffFact(path, oldStr, newStr string) string {
	kind := "replacement"
	switch {
	case oldStr == "" && newStr != "":
		kind = "addition"
	case oldStr != "" && newStr == "":
		kind = "deletion"
	}
	mod := firstLine(newStr)
	if mod == "" {
		mod = firstLine(oldStr)
	}
	if mod != "" {
		return fmt.Sprintf("[DIFF %s %s] %s", orUnknown(path), kind, mod)
	}
	return fmt.Sprintf("[DIFF %s %s]", orUnknown(path), kind)
}

var langByExt = map[string]string{
	".go": "go", ".ts": "typescript", ".tsx": "typescript", ".js": "javascript",
	".jsx": "javascript", ".py": "python", ".rb": "ruby", ".rs": "rust",
	".java": "java", ".c": "c", ".cpp": "cpp", ".cc": "cpp", ".h": "c",
	".md": "markdown", ".json": "json", ".yaml": "yaml", ".yml": "yaml",
	".sql": "sql", ".sh": "shell",
}

var testingHints = []string{"test", "spec", "_test.", ".spec."}
var vcsHints = []string{"git ", "git-", "git\n"}
var researchHints = []string{"search", "fetch", "curl", "wget"}

var fnPattern = regexp.MustCompile(`func(?:tion)?\s+([A-Za-z_][A-Za-z0-9_]*)`)
var classPattern = regexp.MustCompile(`(?:class|struct|type)\s+([A-Za-z_][A-Za-z0-9_]*)`)

func deriveConcepts(toolName string, typ ObservationType, payload map[string]any, rawInput, promptText, response string) []string {
	seen := map[string]bool{}
	var concepts []string
	add := func(c string) {
		if c != "" && !seen[c] {
			seen[c] = true
			concepts = append(concepts, c)
		}
	}

	if path := StringField(payload, "file_path"); path != "" {
		if lang, ok := langByExt[strings.ToLower(filepath.Ext(path))]; ok {
			add(lang)
		}
		lowerPath := strings.ToLower(path)
		for _, h := range testingHints {
			if strings.Contains(lowerPath, h) {
				add("testing")
				break
			}
		}
	}

	command := strings.ToLower(StringField(payload, "command"))
	if command != "" {
		for _, h := range vcsHints {
			if strings.Contains(command, h) {
				add("version-control")
				break
			}
		}
		for _, h := range researchHints {
			if strings.Contains(command, h) {
				add("research")
				break
			}
		}
		for _, h := range testingHints {
			if strings.Contains(command, h) {
				add("testing")
				break
			}
		}
	}
	if toolName == "WebSearch" || toolName == "WebFetch" {
		add("research")
	}

	if typ == ObsWrite {
		oldStr := StringField(payload, "old_string")
		newStr := StringField(payload, "new_string")
		for _, s := range []string{oldStr, newStr} {
			if m := fnPattern.FindStringSubmatch(s); m != nil {
				add("fn:" + m[1])
			}
			if m := classPattern.FindStringSubmatch(s); m != nil {
				add("class:" + m[1])
			}
		}
		if oldStr == "" && newStr != "" {
			add("pattern:addition")
		} else if oldStr != "" && newStr == "" {
			add("pattern:deletion")
		} else if oldStr != "" && newStr != "" {
			add("pattern:replacement")
		}
	}

	add("intent:" + detectIntent(promptText, toolName, StringField(payload, "file_path"), command))

	return concepts
}

var intentKeywords = map[string][]string{
	"bugfix":        {"fix", "bug", "issue", "error", "crash"},
	"feature":       {"add", "implement", "feature", "create", "new"},
	"refactor":      {"refactor", "cleanup", "clean up", "restructure", "simplify"},
	"testing":       {"test", "spec", "coverage"},
	"documentation": {"document", "docs", "readme", "comment"},
	"configuration": {"config", "setting", "env", "setup"},
	"optimization":  {"optimize", "performance", "speed up", "faster"},
}

var intentOrder = []string{"bugfix", "feature", "refactor", "testing", "documentation", "configuration", "optimization"}

// detectIntent picks one intent from the closed set by matching each
// intent's keywords, in intentOrder, as substrings of the latest prompt, the
// command and the file path, defaulting to "investigation" when nothing
// matches. toolName is not consulted, and the path is matched by keyword
// only, not by file extension.
func detectIntent(promptText, toolName, path, command string) string {
	lowerPrompt := strings.ToLower(promptText)
	lowerCommand := strings.ToLower(command)
	lowerPath := strings.ToLower(path)

	for _, intent := range intentOrder {
		for _, kw := range intentKeywords[intent] {
			if strings.Contains(lowerPrompt, kw) || strings.Contains(lowerCommand, kw) || strings.Contains(lowerPath, kw) {
				return intent
			}
		}
	}
	return "investigation"
}

func capStrings(items []string, maxN, maxLen int) []string {
	if len(items) > maxN {
		items = items[:maxN]
	}
	out := make([]string, len(items))
	for i, s := range items {
		if len(s) > maxLen {
			s = s[:maxLen]
		}
		out[i] = s
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func firstLine(s string) string {
	if idx := strings.IndexByte(s, '\n'); idx >= 0 {
		return s[:idx]
	}
	return s
}

func base(path string) string {
	if path == "" {
		return "file"
	}
	return filepath.Base(path)
}

func orUnknown(s string) string {
	if s == "" {
		return "(unknown)"
	}
	return s
}
