package qbittorrent

import (
	"encoding/json"
	"fmt"
)

// Limit is a transfer rate cap in bytes/s. The daemon uses non-positive
// sentinels on the wire for "no cap configured" (-1 on older versions, 0 on
// newer ones); both decode as an unset limit rather than a literal number.
type Limit struct {
	Bytes int64
	Valid bool
}

func (l *Limit) UnmarshalJSON(data []byte) error {
	var v int64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v <= 0 {
		*l = Limit{}
		return nil
	}
	*l = Limit{Bytes: v, Valid: true}
	return nil
}

func (l Limit) String() string {
	if !l.Valid {
		return "unlimited"
	}
	return fmt.Sprintf("%d B/s", l.Bytes)
}

// TorrentState is the daemon's textual state code for a torrent.
type TorrentState string

const (
	StateError       TorrentState = "error"
	StatePausedUp    TorrentState = "pausedUP"
	StatePausedDl    TorrentState = "pausedDL"
	StateQueuedUp    TorrentState = "queuedUP"
	StateQueuedDl    TorrentState = "queuedDL"
	StateUploading   TorrentState = "uploading"
	StateStalledUp   TorrentState = "stalledUP"
	StateStalledDl   TorrentState = "stalledDL"
	StateCheckingUp  TorrentState = "checkingUP"
	StateCheckingDl  TorrentState = "checkingDL"
	StateDownloading TorrentState = "downloading"
	StateMetaDl      TorrentState = "metaDL"
	StateForcedUp    TorrentState = "forcedUP"
	StateForcedDl    TorrentState = "forcedDL"
	StateMissing     TorrentState = "missingFiles"
	StateMoving      TorrentState = "moving"
	StateUnknown     TorrentState = "unknown"
)

// TorrentFilter narrows a torrent listing.
type TorrentFilter string

const (
	FilterAll         TorrentFilter = "all"
	FilterDownloading TorrentFilter = "downloading"
	FilterCompleted   TorrentFilter = "completed"
	FilterPaused      TorrentFilter = "paused"
	FilterActive      TorrentFilter = "active"
	FilterInactive    TorrentFilter = "inactive"
	FilterSeeding     TorrentFilter = "seeding"
	FilterErrored     TorrentFilter = "errored"
)

// TorrentListOptions narrows and pages a torrent listing. The zero value
// lists everything.
type TorrentListOptions struct {
	Filter   TorrentFilter
	Category string
	// Hashes restricts the listing to the given torrents. The v2 API filters
	// daemon-side; legacy daemons ignore the parameter, so the result is
	// filtered after decoding either way.
	Hashes   []Hash
	Sort     string
	Reverse  bool
	Limit    int
	Offset   int
}

// TorrentInfo is one row of a torrent listing. Field names follow the
// daemon's wire names, which the two generations share for this payload
// except for the category (legacy daemons may report it under "label";
// decoding folds that in).
type TorrentInfo struct {
	Hash          Hash         `json:"hash"`
	Name          string       `json:"name"`
	Size          int64        `json:"size"`
	Progress      float64      `json:"progress"`
	DownloadSpeed int64        `json:"dlspeed"`
	UploadSpeed   int64        `json:"upspeed"`
	Priority      int          `json:"priority"`
	Seeds         int          `json:"num_seeds"`
	Leeches       int          `json:"num_leechs"`
	Ratio         float64      `json:"ratio"`
	ETA           int64        `json:"eta"`
	State         TorrentState `json:"state"`
	Category      string       `json:"category"`
	SavePath      string       `json:"save_path"`
	AddedOn       int64        `json:"added_on"`
	CompletionOn  int64        `json:"completion_on"`
	DownloadLimit Limit        `json:"dl_limit"`
	UploadLimit   Limit        `json:"up_limit"`
	Sequential    bool         `json:"seq_dl"`
	FirstLastPrio bool         `json:"f_l_piece_prio"`
	SuperSeeding  bool         `json:"super_seeding"`
	ForceStart    bool         `json:"force_start"`
	AutoManaged   bool         `json:"auto_tmm"`

	// Label carries the legacy category field; Category is authoritative
	// after decoding.
	Label string `json:"label,omitempty"`
}

// TorrentProperties is the detailed view of a single torrent.
type TorrentProperties struct {
	SavePath         string  `json:"save_path"`
	CreationDate     int64   `json:"creation_date"`
	PieceSize        int64   `json:"piece_size"`
	Comment          string  `json:"comment"`
	TotalWasted      int64   `json:"total_wasted"`
	TotalUploaded    int64   `json:"total_uploaded"`
	TotalDownloaded  int64   `json:"total_downloaded"`
	UploadLimit      Limit   `json:"up_limit"`
	DownloadLimit    Limit   `json:"dl_limit"`
	TimeElapsed      int64   `json:"time_elapsed"`
	SeedingTime      int64   `json:"seeding_time"`
	Connections      int     `json:"nb_connections"`
	ConnectionsLimit int     `json:"nb_connections_limit"`
	ShareRatio       float64 `json:"share_ratio"`
	AdditionDate     int64   `json:"addition_date"`
	CompletionDate   int64   `json:"completion_date"`
	CreatedBy        string  `json:"created_by"`
	DownloadSpeed    int64   `json:"dl_speed"`
	UploadSpeed      int64   `json:"up_speed"`
	ETA              int64   `json:"eta"`
	Seeds            int     `json:"seeds"`
	SeedsTotal       int     `json:"seeds_total"`
	Peers            int     `json:"peers"`
	PeersTotal       int     `json:"peers_total"`
	PiecesHave       int     `json:"pieces_have"`
	PiecesNum        int     `json:"pieces_num"`
	TotalSize        int64   `json:"total_size"`
}

// TransferInfo is the daemon's global transfer snapshot.
type TransferInfo struct {
	DownloadSpeed    int64  `json:"dl_info_speed"`
	DownloadedData   int64  `json:"dl_info_data"`
	UploadSpeed      int64  `json:"up_info_speed"`
	UploadedData     int64  `json:"up_info_data"`
	DownloadLimit    Limit  `json:"dl_rate_limit"`
	UploadLimit      Limit  `json:"up_rate_limit"`
	DHTNodes         int64  `json:"dht_nodes"`
	ConnectionStatus string `json:"connection_status"`
}

// Category is a daemon-side torrent category.
type Category struct {
	Name     string `json:"name"`
	SavePath string `json:"savePath"`
}
