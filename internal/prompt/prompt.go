// Package prompt assembles system prompt text with platform and repository
// awareness. Build produces the full prompt; BuildShort produces the
// abbreviated form used when the token budget is tight.
package prompt

import (
	_ "embed"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

//go:embed prompts/role.md
var defaultRole string

// DefaultRole is the built-in assistant role text.
func DefaultRole() string {
	return strings.TrimSpace(defaultRole)
}

// PlatformInfo describes the host environment for the prompt.
type PlatformInfo struct {
	OS    string
	Arch  string
	Shell string
	Cwd   string
	Home  string
	Date  string
}

// GatherPlatform collects platform information from the current process.
func GatherPlatform() PlatformInfo {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/bash"
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	home, _ := os.UserHomeDir()

	return PlatformInfo{
		OS:    runtime.GOOS,
		Arch:  runtime.GOARCH,
		Shell: shell,
		Cwd:   cwd,
		Home:  home,
		Date:  time.Now().Format("2006-01-02"),
	}
}

// RepoInfo describes the git repository at the working directory, when there
// is one.
type RepoInfo struct {
	Root           string
	Branch         string
	HasUncommitted bool
	Language       string
}

// GatherRepo collects repository information by shelling out to git. Fields
// stay empty when git is unavailable or the directory is not a repository.
func GatherRepo() RepoInfo {
	var info RepoInfo

	if out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output(); err == nil {
		info.Root = strings.TrimSpace(string(out))
	}

	if out, err := exec.Command("git", "branch", "--show-current").Output(); err == nil {
		info.Branch = strings.TrimSpace(string(out))
	}

	if out, err := exec.Command("git", "status", "--porcelain").Output(); err == nil {
		info.HasUncommitted = len(out) > 0
	}

	info.Language = detectLanguage()

	return info
}

func detectLanguage() string {
	indicators := []struct {
		file     string
		language string
	}{
		{"go.mod", "Go"},
		{"Cargo.toml", "Rust"},
		{"package.json", "JavaScript/TypeScript"},
		{"pyproject.toml", "Python"},
		{"setup.py", "Python"},
		{"Gemfile", "Ruby"},
		{"pom.xml", "Java"},
		{"build.gradle", "Java/Kotlin"},
		{"mix.exs", "Elixir"},
	}

	for _, indicator := range indicators {
		if _, err := os.Stat(indicator.file); err == nil {
			return indicator.language
		}
	}

	return ""
}

// Builder constructs system prompts from a role plus optional context
// sections.
type Builder struct {
	role             string
	platform         *PlatformInfo
	repo             *RepoInfo
	toolInstructions []string
	guidelines       []string
	preferences      []string
}

// NewBuilder creates a Builder for the given role. An empty role uses the
// embedded default.
func NewBuilder(role string) *Builder {
	if role == "" {
		role = DefaultRole()
	}

	return &Builder{role: role}
}

func (builder *Builder) WithPlatform(platform PlatformInfo) *Builder {
	builder.platform = &platform
	return builder
}

func (builder *Builder) WithRepo(repo RepoInfo) *Builder {
	builder.repo = &repo
	return builder
}

func (builder *Builder) AddToolInstruction(instruction string) *Builder {
	builder.toolInstructions = append(builder.toolInstructions, instruction)
	return builder
}

func (builder *Builder) AddGuideline(guideline string) *Builder {
	builder.guidelines = append(builder.guidelines, guideline)
	return builder
}

func (builder *Builder) AddPreference(preference string) *Builder {
	builder.preferences = append(builder.preferences, preference)
	return builder
}

// Build assembles the full system prompt.
func (builder *Builder) Build() string {
	parts := []string{builder.role}

	if builder.platform != nil {
		parts = append(parts, fmt.Sprintf(
			"\n## Environment\n- OS: %s (%s)\n- Shell: %s\n- Working directory: %s\n- Date: %s",
			builder.platform.OS, builder.platform.Arch, builder.platform.Shell,
			builder.platform.Cwd, builder.platform.Date,
		))
	}

	if builder.repo != nil {
		var lines []string

		if builder.repo.Root != "" {
			lines = append(lines, "- Repository root: "+builder.repo.Root)
		}
		if builder.repo.Branch != "" {
			lines = append(lines, "- Branch: "+builder.repo.Branch)
		}
		if builder.repo.Language != "" {
			lines = append(lines, "- Primary language: "+builder.repo.Language)
		}
		if builder.repo.HasUncommitted {
			lines = append(lines, "- Has uncommitted changes")
		}

		if len(lines) > 0 {
			parts = append(parts, "\n## Repository\n"+strings.Join(lines, "\n"))
		}
	}

	if len(builder.toolInstructions) > 0 {
		parts = append(parts, "\n## Tool Usage\n"+bulleted(builder.toolInstructions))
	}

	if len(builder.guidelines) > 0 {
		parts = append(parts, "\n## Coding Guidelines\n"+bulleted(builder.guidelines))
	}

	if len(builder.preferences) > 0 {
		parts = append(parts, "\n## Preferences\n"+bulleted(builder.preferences))
	}

	return strings.Join(parts, "\n")
}

// BuildShort assembles the abbreviated prompt: the role plus a one-line
// environment summary.
func (builder *Builder) BuildShort() string {
	parts := []string{builder.role}

	if builder.platform != nil {
		parts = append(parts, fmt.Sprintf(
			"Environment: %s %s, cwd: %s",
			builder.platform.OS, builder.platform.Arch, builder.platform.Cwd,
		))
	}

	return strings.Join(parts, " ")
}

func bulleted(items []string) string {
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}

	return strings.Join(lines, "\n")
}
