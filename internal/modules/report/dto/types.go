package dto

type ExporterInfo struct {
	Name         string
	Version      string
	Enabled      bool
	Binary       string
	Capabilities []string
}

type DoctorResult struct {
	Name            string
	ChecksumValid   bool
	BinaryReachable bool
	LifecycleOK     bool
	Error           string
}

type FormatInfo struct {
	ID          string
	Title       string
	Description string
	Extension   string
	TimeoutMS   int
}

type ExportInput struct {
	ExporterName string
	FormatID     string
	OutputDir    string
}

type ExportOutput struct {
	ExporterName string
	FormatID     string
	Content      string
	Path         string
	Stderr       string
	ExitCode     int
}

type SummaryOutput struct {
	ExporterName string
	Summary      string
}
