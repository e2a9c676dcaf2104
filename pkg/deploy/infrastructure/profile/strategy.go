package profile

import (
	"os"

	"github.com/tss-calculator/deployer/pkg/deploy/application/model"
	"github.com/tss-calculator/deployer/pkg/deploy/infrastructure/command"
)

const gitForWindowsBin = "C:/Program Files/Git/usr/bin"

// Strategy captures everything that differs between build profiles.
type Strategy interface {
	Kind() model.ProfileKind
	// BuildTools are the local tools the frontend and backend builds need.
	BuildTools() []string
	// ToolFallbacks lists absolute paths accepted when tool is missing from PATH.
	ToolFallbacks(tool string) []string
	// Local wraps a local tool invocation in the profile's command form.
	Local(workDir, executable string, args ...string) command.Command
	BackendBuild(workDir, target string) command.Command
	// PatchesBuildConfig reports whether a conflicting linker override must be neutralized.
	PatchesBuildConfig() bool
	// NeedsContainerRuntime reports whether the backend build runs in containers.
	NeedsContainerRuntime() bool
	BuildFailureHints() []string
}

func ForKind(kind model.ProfileKind) Strategy {
	if kind.BuildsNatively() {
		return nativeStrategy{kind: kind}
	}
	return crossStrategy{}
}

type nativeStrategy struct {
	kind model.ProfileKind
}

func (s nativeStrategy) Kind() model.ProfileKind {
	return s.kind
}

func (nativeStrategy) BuildTools() []string {
	return []string{"node", "npm", "cargo"}
}

func (nativeStrategy) ToolFallbacks(string) []string {
	return nil
}

func (nativeStrategy) Local(workDir, executable string, args ...string) command.Command {
	return command.Command{WorkDir: workDir, Executable: executable, Args: args, Verbose: true}
}

func (s nativeStrategy) BackendBuild(workDir, target string) command.Command {
	return s.Local(workDir, "cargo", "build", "--release", "--target", target)
}

func (nativeStrategy) PatchesBuildConfig() bool {
	return true
}

func (nativeStrategy) NeedsContainerRuntime() bool {
	return false
}

func (nativeStrategy) BuildFailureHints() []string {
	return []string{
		"Missing system dependencies (build-essential, pkg-config)",
		"Missing development libraries for your dependencies",
		"Conflicting cargo config with cross-compilation settings",
		"Try: sudo apt update && sudo apt install -y build-essential pkg-config libssl-dev",
	}
}

type crossStrategy struct{}

func (crossStrategy) Kind() model.ProfileKind {
	return model.WindowsCross
}

func (crossStrategy) BuildTools() []string {
	return []string{"node", "npm", "cross"}
}

func (crossStrategy) ToolFallbacks(tool string) []string {
	switch tool {
	case "ssh", "scp":
		return []string{gitForWindowsBin + "/" + tool + ".exe"}
	default:
		return nil
	}
}

func (crossStrategy) Local(workDir, executable string, args ...string) command.Command {
	return command.Command{WorkDir: workDir, Executable: executable, Args: args, Shell: true, Verbose: true}
}

func (s crossStrategy) BackendBuild(workDir, target string) command.Command {
	return s.Local(workDir, "cross", "build", "--target", target, "--release")
}

func (crossStrategy) PatchesBuildConfig() bool {
	return false
}

func (crossStrategy) NeedsContainerRuntime() bool {
	return true
}

func (crossStrategy) BuildFailureHints() []string {
	return []string{
		"Make sure Docker is running and accessible",
		"Check if the project has a Cross.toml with a custom Docker image",
		"Ensure all dependencies are compatible with cross-compilation",
		"Try running: cross --version to verify cross is working",
	}
}

// ResolveTool returns the executable to invoke for tool: the name itself when
// lookPath finds it, otherwise the first existing fallback.
func ResolveTool(strategy Strategy, lookPath func(string) (string, error), tool string) (string, bool) {
	if _, err := lookPath(tool); err == nil {
		return tool, true
	}
	for _, fallback := range strategy.ToolFallbacks(tool) {
		if _, err := os.Stat(fallback); err == nil {
			return fallback, true
		}
	}
	return tool, false
}
