package apiserver

import (
	"github.com/spf13/cobra"

	"github.com/openkcm/comment-gateway/internal/business"
	"github.com/openkcm/comment-gateway/internal/cmdutils"
)

func Cmd(buildInfo string) *cobra.Command {
	return cmdutils.CobraCommand(
		"api-server",
		"Comment Gateway API server",
		"Comment Gateway API server hosts the public http API for the GitHub login and the discussion proxy",
		buildInfo,
		cmdutils.RunAsService,
		business.Main,
	)
}
