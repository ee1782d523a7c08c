package reco

type Configuration struct {
	MaxEvents        int           `json:"max_events"`
	Verbosity        int           `json:"verbosity"`
	Skip             int           `json:"skip"`
	FileIn           string        `json:"file_in"`
	FileOut          string        `json:"file_out"`
	FilePDO          string        `json:"file_pdo"`
	FileTDO          string        `json:"file_tdo"`
	RunNumber        int           `json:"run_number"`
	NoDB             bool          `json:"no_db"`
	Host             string        `json:"host"`
	User             string        `json:"user"`
	Passwd           string        `json:"pass"`
	DBName           string        `json:"dbname"`
	ClusterSize      int           `json:"cluster_size"`
	SeedThreshold    float64       `json:"seed_threshold"`
	HitThreshold     float64       `json:"hit_threshold"`
	BoardIndices     map[int]int   `json:"board_indices"`
	Planes           []PlaneConfig `json:"planes"`
	FitTracks        bool          `json:"fit_tracks"`
	MaxFunctionCalls int           `json:"max_function_calls"`
	MaxIterations    int           `json:"max_iterations"`
	Tolerance        float64       `json:"tolerance"`
	NumWorkers       int           `json:"num_workers"`
	Parallel         bool          `json:"parallel"`
	WriteData        bool          `json:"write_data"`
	CompressionLevel int           `json:"compression_level"`
}

// PlaneConfig describes one detector plane. Category is "primary" or "stereo".
type PlaneConfig struct {
	Board    int     `json:"board" db:"Board"`
	Category string  `json:"category" db:"Category"`
	Z        float64 `json:"z" db:"Z"`
	Angle    float64 `json:"angle" db:"Angle"`
	X0       float64 `json:"x0" db:"X0"`
	Y0       float64 `json:"y0" db:"Y0"`
	Pitch    float64 `json:"pitch" db:"Pitch"`
	Offset   float64 `json:"offset" db:"ChannelOffset"`
}

var configuration Configuration

func GetConfiguration() Configuration {
	return configuration
}

func SetConfiguration(config Configuration) {
	configuration = config
	if config.BoardIndices != nil {
		SetBoardIndices(config.BoardIndices)
	}
}
