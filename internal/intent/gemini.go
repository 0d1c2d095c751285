package intent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hemanyagillurkar28-lab/Krishi/internal/locale"
)

type geminiClassifier struct {
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	client      *http.Client
	clock       func() time.Time
}

// NewGeminiClassifier builds a classifier backed by the Google Generative
// Language API using structured JSON output.
func NewGeminiClassifier(endpoint, apiKey, model string, temperature float64, timeout time.Duration) Classifier {
	return &geminiClassifier{
		endpoint:    endpoint,
		apiKey:      apiKey,
		model:       model,
		temperature: temperature,
		client:      &http.Client{Timeout: timeout},
		clock:       time.Now,
	}
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiGenerationConfig struct {
	Temperature      float64         `json:"temperature"`
	ResponseMimeType string          `json:"responseMimeType"`
	ResponseSchema   json.RawMessage `json:"responseSchema"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// responseSchema constrains the model to the classifier wire contract.
var responseSchema = json.RawMessage(`{
  "type": "OBJECT",
  "properties": {
    "intent": {
      "type": "STRING",
      "enum": ["ACTIVITY", "TRANSACTION", "SOIL_TEST", "QUERY", "UNKNOWN"],
      "description": "Classification of voice command. Use QUERY for asking about money, prediction, or status."
    },
    "confidence": {"type": "NUMBER"},
    "data": {
      "type": "OBJECT",
      "properties": {
        "activity_type": {"type": "STRING"},
        "crop": {"type": "STRING"},
        "area": {"type": "NUMBER"},
        "amount": {"type": "NUMBER"},
        "transaction_type": {"type": "STRING", "enum": ["INCOME", "EXPENSE"]},
        "category": {"type": "STRING"},
        "raw_text": {"type": "STRING"}
      }
    },
    "confirmation_message": {
      "type": "STRING",
      "description": "Summarize the action or the requested info in the user's native tongue."
    }
  },
  "required": ["intent", "data", "confirmation_message"]
}`)

func (g *geminiClassifier) Classify(ctx context.Context, text string, lang locale.Language) (ParsedIntent, error) {
	prompt := fmt.Sprintf(`You are a regional farming assistant for Indian farmers.
Analyze the input and return JSON.
Today is %s.

If the user is asking a question about their profit, budget, or prediction, set intent to 'QUERY'.

CRITICAL: The 'confirmation_message' MUST be written in %s script.
DO NOT mix English words into the %s confirmation.
Example Marathi: "मी नोंदवले: आज २ एकरात कांदा लावला."
Example Hindi: "मैने नोट किया: आज २ एकड़ में प्याज लगाया।"
Example Gujarati: "મેં નોંધ્યું: આજે ૨ એકરમાં ડુંગળી વાવી."

User input: %q
`, g.clock().Format("2006-01-02"), lang.Name(), lang.Name(), text)

	payload := geminiRequest{
		Contents: []geminiContent{{Parts: []geminiPart{{Text: prompt}}}},
		GenerationConfig: geminiGenerationConfig{
			Temperature:      g.temperature,
			ResponseMimeType: "application/json",
			ResponseSchema:   responseSchema,
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return ParsedIntent{}, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", g.endpoint, g.model)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return ParsedIntent{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return ParsedIntent{}, fmt.Errorf("classifier request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return ParsedIntent{}, fmt.Errorf("classifier returned status %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return ParsedIntent{}, err
	}
	var decoded geminiResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return ParsedIntent{}, fmt.Errorf("decode classifier response: %w", err)
	}
	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return ParsedIntent{}, fmt.Errorf("classifier returned no candidates")
	}

	parsed, err := Decode([]byte(decoded.Candidates[0].Content.Parts[0].Text))
	if err != nil {
		return ParsedIntent{}, err
	}
	if parsed.RawText == "" {
		parsed.RawText = text
	}
	return parsed, nil
}
