package common

const (
	ToolName         = "llvm-merge"
	ToolVersion      = "0.1.0"
	ConfigFileName   = "merge.toml"
	StdioPath        = "-"
	StagingSuffix    = ".merge.src.tmp"
	IRFileExtension  = ".ll"
	DebugIntrinsicNS = "llvm.dbg."
)
