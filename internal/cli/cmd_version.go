package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/bamboobank/bamboo/internal/storage"
	"github.com/spf13/cobra"
)

// versionView is the --json shape of `bamboo version`. SchemaVersion is the
// highest migration this binary applies, not the version of any open store.
type versionView struct {
	BuildInfo
	SchemaVersion int    `json:"schema_version"`
	GoVersion     string `json:"go_version"`
}

func newVersionCommand(deps commandDeps) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build and schema version",
		Example: "  bamboo version\n" +
			"  version=1.2.3 commit=abc123 build_time=2026-02-19T00:00:00Z schema=2\n\n" +
			"  bamboo --json version\n" +
			`  {"version":"1.2.3","commit":"abc123","build_time":"2026-02-19T00:00:00Z","schema_version":2,"go_version":"go1.24.1"}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) != 0 {
				return usageErrorf("version does not accept positional arguments")
			}
			view := versionView{
				BuildInfo:     deps.build,
				SchemaVersion: storage.CurrentSchemaVersion(),
				GoVersion:     runtime.Version(),
			}
			return mapCommandError(emit(deps, view, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "version=%s commit=%s build_time=%s schema=%d\n",
					view.Version, view.Commit, view.BuildTime, view.SchemaVersion)
				return err
			}))
		},
	}
}
