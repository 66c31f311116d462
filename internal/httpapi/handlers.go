package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/soundmark/soundmark/pkg/soundmark"
	"github.com/soundmark/soundmark/pkg/soundmark/audio"
)

// Server encapsulates the HTTP server and its dependencies.
type Server struct {
	engine *soundmark.Engine
	config *ServerConfig
	log    soundmark.Logger
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port           int
	DBPath         string
	TempDir        string
	SampleRate     int
	AllowedOrigins []string
}

// NewServer creates a new server instance.
func NewServer(engine *soundmark.Engine, log soundmark.Logger, config *ServerConfig) *Server {
	return &Server{engine: engine, config: config, log: log}
}

func (s *Server) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Errorf("failed to encode JSON response: %v", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, statusCode int, message string) {
	s.respondJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
		Code:    statusCode,
	})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"service": "soundmark API",
		"version": "1.0.0",
		"endpoints": map[string]string{
			"health":         "GET /health",
			"stats":          "GET /api/stats",
			"tracks":         "GET /api/tracks",
			"addTrack":       "POST /api/tracks",
			"getTrack":       "GET /api/tracks/{id}",
			"deleteTrack":    "DELETE /api/tracks/{id}",
			"identify":       "POST /api/identify",
			"identifyHashes": "POST /api/identify/hashes",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.engine.Stats(r.Context())
	if err != nil {
		s.log.Errorf("failed to get stats: %v", err)
		s.respondError(w, http.StatusInternalServerError, "failed to retrieve stats")
		return
	}
	s.respondJSON(w, http.StatusOK, StatsResponse{
		TrackCount:       stats.TrackCount,
		FingerprintCount: stats.FingerprintCount,
		SizeBytes:        stats.SizeBytes,
		SizeHuman:        humanize.Bytes(uint64(stats.SizeBytes)),
	})
}

// handleListTracks handles GET /api/tracks
func (s *Server) handleListTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := s.engine.ListTracks(r.Context())
	if err != nil {
		s.log.Errorf("failed to list tracks: %v", err)
		s.respondError(w, http.StatusInternalServerError, "failed to retrieve tracks")
		return
	}

	dtos := make([]TrackDTO, len(tracks))
	for i, t := range tracks {
		dtos[i] = trackToDTO(t)
	}
	s.respondJSON(w, http.StatusOK, ListTracksResponse{Tracks: dtos, Count: len(dtos)})
}

// handleGetTrack handles GET /api/tracks/{id}
func (s *Server) handleGetTrack(w http.ResponseWriter, r *http.Request, id uint32) {
	track, err := s.engine.GetTrack(r.Context(), soundmark.TrackID(id))
	if err != nil {
		s.log.Warnf("track not found: %d", id)
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("track %d not found", id))
		return
	}
	s.respondJSON(w, http.StatusOK, trackToDTO(track))
}

// handleDeleteTrack handles DELETE /api/tracks/{id}
func (s *Server) handleDeleteTrack(w http.ResponseWriter, r *http.Request, id uint32) {
	track, err := s.engine.GetTrack(r.Context(), soundmark.TrackID(id))
	if err != nil {
		s.log.Warnf("track not found for deletion: %d", id)
		s.respondError(w, http.StatusNotFound, fmt.Sprintf("track %d not found", id))
		return
	}
	if err := s.engine.DeleteTrack(r.Context(), soundmark.TrackID(id)); err != nil {
		s.log.Errorf("failed to delete track %d: %v", id, err)
		s.respondError(w, http.StatusInternalServerError, "failed to delete track")
		return
	}
	s.log.Infof("deleted track: %s by %s (id %d)", track.Title, track.Artist, id)
	s.respondJSON(w, http.StatusOK, DeleteTrackResponse{Message: "track deleted", ID: id})
}

// handleAddTrackFile handles POST /api/tracks with a multipart file upload.
func (s *Server) handleAddTrackFile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	if err := r.ParseMultipartForm(100 << 20); err != nil {
		s.log.Errorf("failed to parse form: %v", err)
		s.respondError(w, http.StatusBadRequest, "failed to parse form data")
		return
	}

	title := r.FormValue("title")
	artist := r.FormValue("artist")
	if title == "" || artist == "" {
		s.respondError(w, http.StatusBadRequest, "title and artist are required")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		s.log.Errorf("failed to get audio file: %v", err)
		s.respondError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	tempFile := filepath.Join(s.config.TempDir, fmt.Sprintf("upload_%s_%s", uuid.NewString(), filepath.Base(header.Filename)))
	out, err := os.Create(tempFile)
	if err != nil {
		s.log.Errorf("failed to create temp file: %v", err)
		s.respondError(w, http.StatusInternalServerError, "failed to process upload")
		return
	}
	defer os.Remove(tempFile)
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		s.log.Errorf("failed to save file: %v", err)
		s.respondError(w, http.StatusInternalServerError, "failed to save uploaded file")
		return
	}
	out.Close()

	s.log.Infof("adding track from file: %s by %s", title, artist)
	id, err := s.engine.Ingest(ctx, soundmark.IngestRequest{
		Kind:   soundmark.FileSource,
		Source: tempFile,
		Title:  title,
		Artist: artist,
	})
	if err != nil {
		s.log.Errorf("failed to ingest track: %v", err)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to add track: %v", err))
		return
	}

	s.log.Infof("added track %d (%q by %q)", id, title, artist)
	s.respondJSON(w, http.StatusCreated, AddTrackResponse{
		Message: "track added", ID: uint32(id), Title: title, Artist: artist,
	})
}

// handleAddTrackYouTube handles POST /api/tracks with a JSON
// {"youtube_url": ...} body.
func (s *Server) handleAddTrackYouTube(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	var req AddTrackYouTubeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.log.Infof("adding track from YouTube URL: %s", req.YouTubeURL)
	yt := audio.YouTubeDecoder{SampleRate: s.config.SampleRate, TempDir: s.config.TempDir}
	downloadedPath, ytMeta, err := yt.Fetch(ctx, req.YouTubeURL)
	if err != nil {
		s.log.Errorf("failed to download YouTube video: %v", err)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to download YouTube video: %v", err))
		return
	}
	defer os.Remove(downloadedPath)

	title := req.Title
	if title == "" {
		title = ytMeta.Title
	}
	artist := req.Artist
	if artist == "" {
		artist = ytMeta.Artist
	}
	if title == "" || artist == "" {
		s.respondError(w, http.StatusBadRequest, "could not determine title or artist from YouTube metadata; provide them explicitly")
		return
	}

	youtubeID := ytMeta.ID
	if youtubeID == "" {
		if extracted, err := audio.ExtractYouTubeID(req.YouTubeURL); err == nil {
			youtubeID = extracted
		}
	}

	id, err := s.engine.Ingest(ctx, soundmark.IngestRequest{
		Kind:      soundmark.FileSource,
		Source:    downloadedPath,
		Title:     title,
		Artist:    artist,
		YouTubeID: youtubeID,
	})
	if err != nil {
		s.log.Errorf("failed to ingest downloaded track: %v", err)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("failed to add track: %v", err))
		return
	}

	s.log.Infof("added track %d from YouTube: %q by %q", id, title, artist)
	s.respondJSON(w, http.StatusCreated, AddTrackResponse{
		Message: "track added from YouTube", ID: uint32(id), Title: title, Artist: artist, YouTubeID: youtubeID,
	})
}

// handleIdentify handles POST /api/identify (multipart file upload).
func (s *Server) handleIdentify(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Minute)
	defer cancel()

	if err := r.ParseMultipartForm(50 << 20); err != nil {
		s.respondError(w, http.StatusBadRequest, "failed to parse form data")
		return
	}

	file, header, err := r.FormFile("audio")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	tempFile := filepath.Join(s.config.TempDir, fmt.Sprintf("query_%s_%s", uuid.NewString(), filepath.Base(header.Filename)))
	out, err := os.Create(tempFile)
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to process upload")
		return
	}
	defer os.Remove(tempFile)
	if _, err := io.Copy(out, file); err != nil {
		out.Close()
		s.respondError(w, http.StatusInternalServerError, "failed to save uploaded file")
		return
	}
	out.Close()

	s.log.Infof("identifying uploaded file: %s", header.Filename)
	matches, err := s.engine.Identify(ctx, soundmark.IdentifyRequest{
		Kind:   soundmark.FileSource,
		Source: tempFile,
	})
	if err != nil {
		s.log.Errorf("identify failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("identify failed: %v", err))
		return
	}

	s.respondCandidates(w, matches)
}

// handleIdentifyHashes handles POST /api/identify/hashes, matching a
// client-precomputed fingerprint set (the WASM path) without re-running
// the DSP pipeline server-side.
func (s *Server) handleIdentifyHashes(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req IdentifyHashesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Hashes) >= HashWarningThreshold {
		s.log.Warnf("large hash batch received: %d hashes", len(req.Hashes))
	}

	fps := make([]soundmark.Fingerprint, 0, len(req.Hashes))
	for hash, anchorTime := range req.Hashes {
		fps = append(fps, soundmark.Fingerprint{Hash: hash, AnchorTime: anchorTime})
	}

	s.log.Infof("identifying %d client-supplied hashes", len(fps))
	matches, err := s.engine.IdentifyFingerprints(ctx, fps)
	if err != nil {
		s.log.Errorf("hash identify failed: %v", err)
		s.respondError(w, http.StatusInternalServerError, fmt.Sprintf("identify failed: %v", err))
		return
	}

	s.respondCandidates(w, matches)
}

func (s *Server) respondCandidates(w http.ResponseWriter, matches []soundmark.Candidate) {
	dtos := make([]CandidateDTO, len(matches))
	for i, m := range matches {
		dto := CandidateDTO{
			TrackID:    uint32(m.Track),
			Score:      m.Score,
			Offset:     m.Offset,
			Margin:     m.Margin,
			Confidence: m.Confidence,
		}
		if track, err := s.engine.GetTrack(context.Background(), m.Track); err == nil {
			dto.Title, dto.Artist, dto.YouTubeID = track.Title, track.Artist, track.YouTubeID
		}
		dtos[i] = dto
	}
	s.respondJSON(w, http.StatusOK, IdentifyResponse{Matches: dtos, Count: len(dtos)})
}

func trackToDTO(t soundmark.TrackMeta) TrackDTO {
	return TrackDTO{
		ID: uint32(t.ID), Title: t.Title, Artist: t.Artist,
		YouTubeID: t.YouTubeID, DurationMs: t.DurationMs,
	}
}

// handleTracks routes requests to /api/tracks
func (s *Server) handleTracks(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListTracks(w, r)
	case http.MethodPost:
		if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
			s.handleAddTrackYouTube(w, r)
		} else {
			s.handleAddTrackFile(w, r)
		}
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleTrack routes requests to /api/tracks/{id}
func (s *Server) handleTrack(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/tracks/")
	if idStr == "" {
		s.respondError(w, http.StatusBadRequest, "track id required")
		return
	}
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid track id")
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetTrack(w, r, uint32(id))
	case http.MethodDelete:
		s.handleDeleteTrack(w, r, uint32(id))
	default:
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleIdentifyRoute routes requests to /api/identify
func (s *Server) handleIdentifyRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.handleIdentify(w, r)
}

// handleIdentifyHashesRoute routes requests to /api/identify/hashes
func (s *Server) handleIdentifyHashesRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.handleIdentifyHashes(w, r)
}
