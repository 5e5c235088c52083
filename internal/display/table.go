package display

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/grovetools/agentview/internal/session"
)

// PrintSessionsTable prints a list of sessions in a formatted table.
func PrintSessionsTable(sessions []session.SessionInfo, writer io.Writer) error {
	w := tabwriter.NewWriter(writer, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "SESSION ID\tPROVIDER\tECOSYSTEM\tPROJECT\tWORKTREE\tSTARTED")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			s.SessionID, s.Provider, s.Ecosystem, s.ProjectName, s.Worktree,
			s.StartedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}
