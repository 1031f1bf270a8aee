package safety

import (
	"code-agent-guard/internal/domain/shell"
	"regexp"
	"strings"
)

// DangerousPattern flags a destructive command independently of the allowlist.
// Pattern is matched against the command rendered as "executable arg1 arg2 ...".
type DangerousPattern struct {
	Pattern *regexp.Regexp
	Reason  string
}

// MustDangerous creates a DangerousPattern. It panics on an invalid expression.
func MustDangerous(pattern, reason string) DangerousPattern {
	return DangerousPattern{
		Pattern: regexp.MustCompile(pattern),
		Reason:  reason,
	}
}

// DangerousPatterns are destructive commands worth calling out in a denial. They
// never allow or deny anything by themselves.
//
//nolint:gochecknoglobals // read-only pattern table
var DangerousPatterns = []DangerousPattern{
	// Destructive file operations
	MustDangerous(`^rm(\s+-\w+)*\s+[/~*]`, "destructive rm command"),
	MustDangerous(`^rm\s+(.*\s)?-(rf|fr|Rf|fR)\b`, "recursive force delete"),
	MustDangerous(`^shred\s`, "irreversible file overwrite"),

	// Privilege escalation
	MustDangerous(`^(sudo|doas)(\s|$)`, "privilege escalation"),
	MustDangerous(`^su(\s|$)`, "switch user command"),

	// Permissions and ownership
	MustDangerous(`^chmod\s+(-R\s+)?(0?777|a\+rwx)`, "insecure chmod"),
	MustDangerous(`^chown\s+(-R\s+)?root`, "change ownership to root"),

	// Disks and filesystems
	MustDangerous(`^mkfs(\.\w+)?(\s|$)`, "filesystem format"),
	MustDangerous(`^(fdisk|parted)\s`, "disk partitioning"),
	MustDangerous(`^dd\s.*\bof=`, "low-level disk write"),

	// Processes and services
	MustDangerous(`^kill\s+(-9|-KILL|-SIGKILL)\s+(--\s+)?-1\b`, "kill all processes"),
	MustDangerous(`^killall\s+-9`, "kill all processes by name"),
	MustDangerous(`^systemctl\s+(stop|disable|mask)\s`, "stop or disable system service"),
	MustDangerous(`^(iptables\s+(-F|--flush)|ufw\s+disable)`, "disable firewall"),
	MustDangerous(`^crontab\s+-[re]`, "crontab modification"),

	// Version control
	MustDangerous(`^git\s+(push\s+(.*\s)?(-f|--force)|reset\s+--hard|clean\s+-\w*f)`, "discards work irreversibly"),

	// Containers
	MustDangerous(`^docker\s+run\s.*--privileged`, "privileged container"),
	MustDangerous(`^nsenter\s.*(--target\s+1|-t\s*1)(\s|$)`, "nsenter to init process"),

	// find actions
	MustDangerous(`^find\s.*\s-(exec|execdir|delete|ok|okdir)(\s|$)`, "find with -exec or -delete"),
}

// systemWritePrefixes are redirect targets that modify the host.
var systemWritePrefixes = []string{"/etc/", "/boot/", "/dev/sd", "/dev/nvme", "/dev/hd", "/var/spool/cron"}

var (
	downloaders  = map[string]bool{"curl": true, "wget": true}
	shellRunners = map[string]bool{"sh": true, "bash": true, "zsh": true, "python": true, "python3": true}
)

// IsDangerousCommand reports whether any command of list looks destructive,
// with the reason of the first match. Remote scripts piped into a shell are
// detected across the pipeline.
func IsDangerousCommand(list shell.CommandList) (bool, string) {
	for i, cmd := range list {
		if dangerous, reason := checkDangerousPatterns(cmd); dangerous {
			return true, reason
		}
		if i > 0 && cmd.ReceivingPipe && shellRunners[baseName(cmd.Executable)] &&
			downloaders[baseName(list[i-1].Executable)] {
			return true, "remote code execution"
		}
	}
	return false, ""
}

func checkDangerousPatterns(cmd shell.ParsedCommand) (bool, string) {
	line := strings.Join(append([]string{baseName(cmd.Executable)}, cmd.Args...), " ")
	for _, dp := range DangerousPatterns {
		if dp.Pattern.MatchString(line) {
			return true, dp.Reason
		}
	}

	for _, r := range cmd.FileRedirects {
		if r.Direction != shell.RedirectOutput {
			continue
		}
		for _, prefix := range systemWritePrefixes {
			if strings.HasPrefix(r.Target, prefix) {
				return true, "write to system path " + r.Target
			}
		}
	}
	return false, ""
}

func baseName(executable string) string {
	if i := strings.LastIndex(executable, "/"); i >= 0 {
		return executable[i+1:]
	}
	return executable
}
