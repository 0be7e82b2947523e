package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"skywatch/internal/clients"
	"skywatch/internal/models"
	"skywatch/internal/repository"
)

const forcedSystemPrompt = `You are a professional weather assistant. Based on the provided weather data, produce a structured weather advisory. Use markdown for readability, but do not wrap the answer in a code block. Include:
1. Today's advice: practical suggestions for the current weather.
2. Upcoming days: reminders if a trend is visible.
3. Safety advice: safety suggestions for the weather and any alerts.
4. Alert-specific advice (only when alerts are present): a separate highlighted reminder.
5. Anything else you consider worth advising.
Keep the advice concrete, practical and concise, suitable for everyday life.`

const autoSystemPrompt = `You are a professional weather assistant monitoring weather changes. Based on the provided weather data, judge whether the change since the earlier data is significant enough to warrant an updated advisory.
If the change is significant, produce a structured advisory including:
1. Today's advice: practical suggestions for the current weather.
2. Upcoming days: reminders if a trend is visible.
3. Change-specific advice: highlight what changed and what to do about it.
4. Safety advice: safety suggestions for the weather and any alerts.
5. Alert-specific advice (only when alerts are present): a separate highlighted reminder.
6. Anything else you consider worth advising.
Keep the advice concrete, practical and concise, suitable for everyday life.
Respond with exactly this JSON shape:
{
"need_update": true/false (true when temperature changed significantly, conditions changed, new alerts appeared, or you see any other reason to update; false otherwise),
"advice": "your advisory in markdown, without code block fences; leave empty when need_update is false"
}`

// fallbackAdvice is the fixed user-facing message for any generation failure.
const fallbackAdvice = "Sorry, an advisory cannot be generated right now. Please try again later."

// AdviceService produces advisory text through the text-generation
// collaborator and persists accepted advisories. GetAdvice never fails: every
// failure mode collapses into a well-formed result the caller can display.
type AdviceService interface {
	GetAdvice(ctx context.Context, req models.AdviceRequest) *models.AdviceResult
}

type adviceService struct {
	llm         clients.DeepSeekClient
	repo        repository.AdviceRepository
	weatherRepo repository.WeatherRepository
	cacheRepo   repository.CacheRepository
}

func NewAdviceService(
	llm clients.DeepSeekClient,
	repo repository.AdviceRepository,
	weatherRepo repository.WeatherRepository,
	cacheRepo repository.CacheRepository,
) AdviceService {
	return &adviceService{
		llm:         llm,
		repo:        repo,
		weatherRepo: weatherRepo,
		cacheRepo:   cacheRepo,
	}
}

// verdict is the structured decision object requested in auto mode.
type verdict struct {
	NeedUpdate bool   `json:"need_update"`
	Advice     string `json:"advice"`
}

// parseVerdict splits the model response into parsed-vs-unparsed; the caller
// collapses the unparsed case into the fail-open policy. Responses that are
// valid JSON but not the verdict shape (no need_update key) count as
// unparsed too.
func parseVerdict(raw string) (*verdict, bool) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &probe); err != nil {
		return nil, false
	}
	if _, ok := probe["need_update"]; !ok {
		return nil, false
	}
	var v verdict
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return nil, false
	}
	return &v, true
}

func (s *adviceService) GetAdvice(ctx context.Context, req models.AdviceRequest) *models.AdviceResult {
	if req.Current == nil {
		return &models.AdviceResult{
			Advice:     "Unable to retrieve weather data. Check your network connection or API configuration.",
			NeedUpdate: false,
		}
	}

	systemPrompt := autoSystemPrompt
	if req.ForceUpdate {
		systemPrompt = forcedSystemPrompt
	}
	userPrompt := buildUserPrompt(req)

	raw, err := s.llm.Complete(ctx, systemPrompt, userPrompt, !req.ForceUpdate)
	if err != nil {
		log.Printf("Advice generation failed: %v", err)
		return &models.AdviceResult{Advice: fallbackAdvice, NeedUpdate: false}
	}

	var result *models.AdviceResult
	if req.ForceUpdate {
		result = &models.AdviceResult{Advice: raw, NeedUpdate: true}
	} else if v, ok := parseVerdict(raw); ok {
		result = &models.AdviceResult{Advice: v.Advice, NeedUpdate: v.NeedUpdate}
	} else {
		// Fail open: silently dropping an advisory is worse than
		// over-generating one, so the raw text becomes the advisory.
		log.Printf("Model response is not a valid verdict object, forcing update")
		result = &models.AdviceResult{Advice: raw, NeedUpdate: true}
	}

	s.persist(ctx, req, result)
	return result
}

// persist records an accepted advisory. Storage failure is logged and
// swallowed so the caller still gets the generated text.
func (s *adviceService) persist(ctx context.Context, req models.AdviceRequest, result *models.AdviceResult) {
	if req.RecordID == 0 || !result.NeedUpdate || result.Advice == "" {
		return
	}

	updateType := models.UpdateAuto
	if req.ForceUpdate {
		updateType = models.UpdateForced
	}

	record := &models.AdviceRecord{
		WeatherRecordID: req.RecordID,
		AdviceText:      result.Advice,
		UpdateType:      updateType,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		log.Printf("Failed to save advice record: %v", err)
		return
	}

	// Cached history pages carry the advisory trail, so a fresh advisory
	// stales them just like a fresh observation does.
	s.invalidateHistory(ctx, req.RecordID)
}

func (s *adviceService) invalidateHistory(ctx context.Context, recordID uint) {
	record, err := s.weatherRepo.GetByID(ctx, recordID)
	if err != nil || record == nil {
		log.Printf("Failed to resolve record %d for cache invalidation: %v", recordID, err)
		return
	}
	pattern := historyKeyPrefix(record.Latitude, record.Longitude) + ":*"
	if err := s.cacheRepo.DeleteByPattern(ctx, pattern); err != nil {
		log.Printf("Failed to invalidate history cache: %v", err)
	}
}

func buildUserPrompt(req models.AdviceRequest) string {
	var b strings.Builder

	b.WriteString("Current weather data (full):\n")
	b.WriteString(marshalIndent(req.Current))

	if req.LastUpdate != nil {
		b.WriteString("\n\nWeather data at the time of the last advisory (context only):\n")
		b.WriteString(marshalIndent(extractBriefCurrent(req.LastUpdate)))
	}

	if req.Previous != nil && !req.ForceUpdate {
		b.WriteString("\n\nImmediately preceding weather data (context only):\n")
		b.WriteString(marshalIndent(extractBriefCurrent(req.Previous)))
	}

	if alerts := ExtractAlerts(req.Current); len(alerts) > 0 {
		b.WriteString("\n\nActive weather alerts:\n")
		b.WriteString(strings.Join(alerts, "\n"))
	}

	return b.String()
}

// extractBriefCurrent trims a payload down to prompt-sized context: the
// current block minus sunrise/sunset, plus alerts, timezone and coordinates.
func extractBriefCurrent(payload map[string]any) map[string]any {
	current := getMap(payload, "current")
	if current == nil {
		return map[string]any{}
	}

	trimmed := make(map[string]any, len(current))
	for k, v := range current {
		if k == "sunrise" || k == "sunset" {
			continue
		}
		trimmed[k] = v
	}

	brief := map[string]any{
		"current":  trimmed,
		"timezone": payload["timezone"],
		"lat":      payload["lat"],
		"lon":      payload["lon"],
	}
	if alerts, ok := payload["alerts"]; ok {
		brief["alerts"] = alerts
	}
	if offset, ok := payload["timezone_offset"]; ok {
		brief["timezone_offset"] = offset
	}
	return brief
}

func marshalIndent(v any) string {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}
