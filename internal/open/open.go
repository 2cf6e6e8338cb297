package open

import (
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strconv"
	"strings"
)

// BrowserArgs picks the command that opens url: $BROWSER when set, otherwise
// the platform opener.
func BrowserArgs(goos, browserEnv, url string) []string {
	if browserEnv != "" {
		fields := strings.Fields(browserEnv)
		return append(fields, url)
	}
	switch goos {
	case "darwin":
		return []string{"open", url}
	case "windows":
		return []string{"rundll32", "url.dll,FileProtocolHandler", url}
	default:
		return []string{"xdg-open", url}
	}
}

// URL opens url in the browser without waiting for it to exit.
func URL(url string) error {
	args := BrowserArgs(runtime.GOOS, os.Getenv("BROWSER"), url)
	cmd := exec.Command(args[0], args[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", url, err)
	}
	// reap the child so it does not linger as a zombie
	go cmd.Wait()
	return nil
}

// EditorArgs builds the editor command line positioned at lineNum.
func EditorArgs(editor, filePath string, lineNum int) []string {
	if lineNum < 1 {
		lineNum = 1
	}
	switch {
	case strings.Contains(editor, "vim") || strings.Contains(editor, "nvim"):
		return []string{editor, fmt.Sprintf("+%d", lineNum), filePath}
	case strings.Contains(editor, "code"):
		return []string{editor, "--goto", filePath + ":" + strconv.Itoa(lineNum)}
	case strings.Contains(editor, "less"):
		return []string{editor, "+" + strconv.Itoa(lineNum), filePath}
	default:
		return []string{editor, filePath}
	}
}

// File opens filePath in $EDITOR (default less) and waits for it to exit.
func File(filePath string, lineNum int) error {
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file not found: %s", filePath)
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "less"
	}

	args := EditorArgs(editor, filePath, lineNum)
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
