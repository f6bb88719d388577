package qbittorrent

import (
	"fmt"
	"net/http"

	"github.com/Masterminds/semver/v3"
)

// operation identifies a logical operation independent of API generation.
type operation int

const (
	opLogin operation = iota
	opLogout
	opTorrentList
	opTorrentProperties
	opPause
	opPauseAll
	opResume
	opResumeAll
	opRecheck
	opReannounce
	opDelete
	opDeleteWithFiles
	opIncreasePriority
	opDecreasePriority
	opTopPriority
	opBottomPriority
	opAddURLs
	opAddFiles
	opSetCategory
	opAddCategory
	opEditCategory
	opRemoveCategories
	opCategories
	opTransferInfo
	opGlobalDownloadLimit
	opSetGlobalDownloadLimit
	opGlobalUploadLimit
	opSetGlobalUploadLimit
	opDownloadLimit
	opSetDownloadLimit
	opUploadLimit
	opSetUploadLimit
	opSetAutoManagement
	opSetForceStart
	opSetSuperSeeding
	opToggleSequentialDownload
	opToggleFirstLastPiecePrio
	opSetLocation
	opRenameTorrent
	opShutdown
	opRSSAddFolder
	opRSSAddFeed
	opRSSRemoveItem
	opRSSMoveItem
	opRSSItems
	opRSSSetRule
	opRSSRenameRule
	opRSSRemoveRule
	opRSSRules
)

// endpoint is the wire shape of one operation under one API generation.
type endpoint struct {
	method string
	path   string
	// hashField names the request field carrying the torrent selector:
	// "hash" for legacy single-value commands, "hashes" for pipe-joined
	// lists. Empty when the operation takes no selector.
	hashField string
	// perHash marks legacy commands whose endpoint accepts a single hash;
	// bulk invocations fan out one request per hash.
	perHash bool
	// appendHash marks legacy read paths that carry the hash as a path
	// segment rather than a query parameter.
	appendHash bool
}

// endpointSpec is one row of the v1/v2 translation table.
type endpointSpec struct {
	name  string
	v1    *endpoint
	v2    *endpoint
	minV2 *semver.Version // minimum webapi version within GenV2, nil = any
}

// allSelectorV2 is the v2 wire value selecting every torrent. The legacy API
// has no such value; its "all" form is a dedicated endpoint where one exists.
const allSelectorV2 = "all"

var (
	apiVersion202 = semver.MustParse("2.0.2")
	apiVersion210 = semver.MustParse("2.1.0")
	apiVersion211 = semver.MustParse("2.1.1")
)

// endpoints is the single source of truth for every divergence between the
// two API generations: paths, methods, selector fields and version gates.
// A nil generation entry means the detected daemon cannot serve the
// operation and resolution fails before any request is sent.
var endpoints = map[operation]endpointSpec{
	opLogin: {
		name: "login",
		v1:   &endpoint{method: http.MethodPost, path: "/login"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/auth/login"},
	},
	opLogout: {
		name: "logout",
		v1:   &endpoint{method: http.MethodPost, path: "/logout"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/auth/logout"},
	},
	opTorrentList: {
		name: "torrent list",
		v1:   &endpoint{method: http.MethodGet, path: "/query/torrents"},
		v2:   &endpoint{method: http.MethodGet, path: "/api/v2/torrents/info"},
	},
	opTorrentProperties: {
		name: "torrent properties",
		v1:   &endpoint{method: http.MethodGet, path: "/query/propertiesGeneral", appendHash: true},
		v2:   &endpoint{method: http.MethodGet, path: "/api/v2/torrents/properties", hashField: "hash"},
	},
	opPause: {
		name: "pause",
		v1:   &endpoint{method: http.MethodPost, path: "/command/pause", hashField: "hash", perHash: true},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/pause", hashField: "hashes"},
	},
	opPauseAll: {
		name: "pause all",
		v1:   &endpoint{method: http.MethodPost, path: "/command/pauseAll"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/pause", hashField: "hashes"},
	},
	opResume: {
		name: "resume",
		v1:   &endpoint{method: http.MethodPost, path: "/command/resume", hashField: "hash", perHash: true},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/resume", hashField: "hashes"},
	},
	opResumeAll: {
		name: "resume all",
		v1:   &endpoint{method: http.MethodPost, path: "/command/resumeAll"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/resume", hashField: "hashes"},
	},
	opRecheck: {
		name: "recheck",
		v1:   &endpoint{method: http.MethodPost, path: "/command/recheck", hashField: "hash", perHash: true},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/recheck", hashField: "hashes"},
	},
	opReannounce: {
		name:  "reannounce",
		v2:    &endpoint{method: http.MethodPost, path: "/api/v2/torrents/reannounce", hashField: "hashes"},
		minV2: apiVersion202,
	},
	opDelete: {
		name: "delete",
		v1:   &endpoint{method: http.MethodPost, path: "/command/delete", hashField: "hashes"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/delete", hashField: "hashes"},
	},
	opDeleteWithFiles: {
		name: "delete with files",
		v1:   &endpoint{method: http.MethodPost, path: "/command/deletePerm", hashField: "hashes"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/delete", hashField: "hashes"},
	},
	opIncreasePriority: {
		name: "increase priority",
		v1:   &endpoint{method: http.MethodPost, path: "/command/increasePrio", hashField: "hashes"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/increasePrio", hashField: "hashes"},
	},
	opDecreasePriority: {
		name: "decrease priority",
		v1:   &endpoint{method: http.MethodPost, path: "/command/decreasePrio", hashField: "hashes"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/decreasePrio", hashField: "hashes"},
	},
	opTopPriority: {
		name: "top priority",
		v1:   &endpoint{method: http.MethodPost, path: "/command/topPrio", hashField: "hashes"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/topPrio", hashField: "hashes"},
	},
	opBottomPriority: {
		name: "bottom priority",
		v1:   &endpoint{method: http.MethodPost, path: "/command/bottomPrio", hashField: "hashes"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/bottomPrio", hashField: "hashes"},
	},
	opAddURLs: {
		name: "add torrent urls",
		v1:   &endpoint{method: http.MethodPost, path: "/command/download"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/add"},
	},
	opAddFiles: {
		name: "add torrent files",
		v1:   &endpoint{method: http.MethodPost, path: "/command/upload"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/add"},
	},
	opSetCategory: {
		name: "set category",
		v1:   &endpoint{method: http.MethodPost, path: "/command/setCategory", hashField: "hashes"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/setCategory", hashField: "hashes"},
	},
	opAddCategory: {
		name: "add category",
		v1:   &endpoint{method: http.MethodPost, path: "/command/addCategory"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/createCategory"},
	},
	opEditCategory: {
		name:  "edit category",
		v2:    &endpoint{method: http.MethodPost, path: "/api/v2/torrents/editCategory"},
		minV2: apiVersion210,
	},
	opRemoveCategories: {
		name: "remove categories",
		v1:   &endpoint{method: http.MethodPost, path: "/command/removeCategories"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/removeCategories"},
	},
	opCategories: {
		name:  "list categories",
		v2:    &endpoint{method: http.MethodGet, path: "/api/v2/torrents/categories"},
		minV2: apiVersion211,
	},
	opTransferInfo: {
		name: "transfer info",
		v1:   &endpoint{method: http.MethodGet, path: "/query/transferInfo"},
		v2:   &endpoint{method: http.MethodGet, path: "/api/v2/transfer/info"},
	},
	opGlobalDownloadLimit: {
		name: "global download limit",
		v1:   &endpoint{method: http.MethodPost, path: "/command/getGlobalDlLimit"},
		v2:   &endpoint{method: http.MethodGet, path: "/api/v2/transfer/downloadLimit"},
	},
	opSetGlobalDownloadLimit: {
		name: "set global download limit",
		v1:   &endpoint{method: http.MethodPost, path: "/command/setGlobalDlLimit"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/transfer/setDownloadLimit"},
	},
	opGlobalUploadLimit: {
		name: "global upload limit",
		v1:   &endpoint{method: http.MethodPost, path: "/command/getGlobalUpLimit"},
		v2:   &endpoint{method: http.MethodGet, path: "/api/v2/transfer/uploadLimit"},
	},
	opSetGlobalUploadLimit: {
		name: "set global upload limit",
		v1:   &endpoint{method: http.MethodPost, path: "/command/setGlobalUpLimit"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/transfer/setUploadLimit"},
	},
	opDownloadLimit: {
		name: "torrent download limit",
		v1:   &endpoint{method: http.MethodPost, path: "/command/getTorrentsDlLimit", hashField: "hashes"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/downloadLimit", hashField: "hashes"},
	},
	opSetDownloadLimit: {
		name: "set torrent download limit",
		v1:   &endpoint{method: http.MethodPost, path: "/command/setTorrentsDlLimit", hashField: "hashes"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/setDownloadLimit", hashField: "hashes"},
	},
	opUploadLimit: {
		name: "torrent upload limit",
		v1:   &endpoint{method: http.MethodPost, path: "/command/getTorrentsUpLimit", hashField: "hashes"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/uploadLimit", hashField: "hashes"},
	},
	opSetUploadLimit: {
		name: "set torrent upload limit",
		v1:   &endpoint{method: http.MethodPost, path: "/command/setTorrentsUpLimit", hashField: "hashes"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/setUploadLimit", hashField: "hashes"},
	},
	opSetAutoManagement: {
		name: "set automatic management",
		v1:   &endpoint{method: http.MethodPost, path: "/command/setAutoTMM", hashField: "hashes"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/setAutoManagement", hashField: "hashes"},
	},
	opSetForceStart: {
		name: "set force start",
		v1:   &endpoint{method: http.MethodPost, path: "/command/setForceStart", hashField: "hashes"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/setForceStart", hashField: "hashes"},
	},
	opSetSuperSeeding: {
		name: "set super seeding",
		v1:   &endpoint{method: http.MethodPost, path: "/command/setSuperSeeding", hashField: "hashes"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/setSuperSeeding", hashField: "hashes"},
	},
	opToggleSequentialDownload: {
		name: "toggle sequential download",
		v1:   &endpoint{method: http.MethodPost, path: "/command/toggleSequentialDownload", hashField: "hashes"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/toggleSequentialDownload", hashField: "hashes"},
	},
	opToggleFirstLastPiecePrio: {
		name: "toggle first/last piece priority",
		v1:   &endpoint{method: http.MethodPost, path: "/command/toggleFirstLastPiecePrio", hashField: "hashes"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/toggleFirstLastPiecePrio", hashField: "hashes"},
	},
	opSetLocation: {
		name: "set location",
		v1:   &endpoint{method: http.MethodPost, path: "/command/setLocation", hashField: "hashes"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/setLocation", hashField: "hashes"},
	},
	opRenameTorrent: {
		name: "rename torrent",
		v1:   &endpoint{method: http.MethodPost, path: "/command/rename", hashField: "hash"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/torrents/rename", hashField: "hash"},
	},
	opShutdown: {
		name: "shutdown daemon",
		v1:   &endpoint{method: http.MethodPost, path: "/command/shutdown"},
		v2:   &endpoint{method: http.MethodPost, path: "/api/v2/app/shutdown"},
	},
	opRSSAddFolder: {
		name:  "rss add folder",
		v2:    &endpoint{method: http.MethodPost, path: "/api/v2/rss/addFolder"},
		minV2: apiVersion210,
	},
	opRSSAddFeed: {
		name:  "rss add feed",
		v2:    &endpoint{method: http.MethodPost, path: "/api/v2/rss/addFeed"},
		minV2: apiVersion210,
	},
	opRSSRemoveItem: {
		name:  "rss remove item",
		v2:    &endpoint{method: http.MethodPost, path: "/api/v2/rss/removeItem"},
		minV2: apiVersion210,
	},
	opRSSMoveItem: {
		name:  "rss move item",
		v2:    &endpoint{method: http.MethodPost, path: "/api/v2/rss/moveItem"},
		minV2: apiVersion210,
	},
	opRSSItems: {
		name:  "rss items",
		v2:    &endpoint{method: http.MethodGet, path: "/api/v2/rss/items"},
		minV2: apiVersion210,
	},
	opRSSSetRule: {
		name:  "rss set rule",
		v2:    &endpoint{method: http.MethodPost, path: "/api/v2/rss/setRule"},
		minV2: apiVersion210,
	},
	opRSSRenameRule: {
		name:  "rss rename rule",
		v2:    &endpoint{method: http.MethodPost, path: "/api/v2/rss/renameRule"},
		minV2: apiVersion210,
	},
	opRSSRemoveRule: {
		name:  "rss remove rule",
		v2:    &endpoint{method: http.MethodPost, path: "/api/v2/rss/removeRule"},
		minV2: apiVersion210,
	},
	opRSSRules: {
		name:  "rss rules",
		v2:    &endpoint{method: http.MethodGet, path: "/api/v2/rss/rules"},
		minV2: apiVersion210,
	},
}

// resolve maps a logical operation to its wire endpoint for the detected
// capability. It is pure: the same operation and capability always yield the
// same endpoint or the same refusal. A generation without an entry, or a v2
// daemon below the operation's minimum version, refuses before any I/O.
func resolve(op operation, cap Capability) (*endpoint, error) {
	spec, ok := endpoints[op]
	if !ok {
		return nil, fmt.Errorf("unknown operation %d", op)
	}

	var ep *endpoint
	switch cap.Generation {
	case GenV1:
		ep = spec.v1
	case GenV2:
		ep = spec.v2
	default:
		return nil, fmt.Errorf("unknown api generation %d", cap.Generation)
	}

	if ep == nil {
		required := GenV2.String()
		if spec.v2 == nil {
			required = GenV1.String()
		}
		if spec.minV2 != nil {
			required = fmt.Sprintf("%s >= %s", GenV2, spec.minV2)
		}
		return nil, &UnsupportedError{Op: spec.name, Required: required, Actual: cap}
	}

	if cap.Generation == GenV2 && spec.minV2 != nil && !cap.AtLeast(spec.minV2) {
		return nil, &UnsupportedError{
			Op:       spec.name,
			Required: fmt.Sprintf("%s >= %s", GenV2, spec.minV2),
			Actual:   cap,
		}
	}

	return ep, nil
}

// opName returns the stable human-readable name of an operation.
func opName(op operation) string {
	if spec, ok := endpoints[op]; ok {
		return spec.name
	}
	return fmt.Sprintf("operation %d", op)
}
