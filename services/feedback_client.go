// learning-rewards-system/services/feedback_client.go
package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"

	"learning-rewards-system/utils"
)

// FeedbackServiceClient talks to the external text-completion endpoint that
// produces encouraging feedback for a child's answer. The service is a black
// box: prompt in, string out.
type FeedbackServiceClient struct {
	BaseURL string
	Token   string
	Client  *http.Client
}

type FeedbackResponse struct {
	Feedback string `json:"feedback"`
}

func NewFeedbackServiceClient(baseURL, token string) *FeedbackServiceClient {
	return &FeedbackServiceClient{
		BaseURL: baseURL,
		Token:   token,
		Client:  utils.HTTPClient,
	}
}

// GenerateFeedback calls /generate on the feedback service
func (c *FeedbackServiceClient) GenerateFeedback(lessonTitle, question, answer string) (string, error) {
	url := fmt.Sprintf("%s/generate", c.BaseURL)

	prompt := fmt.Sprintf(
		"You are a friendly tutor for children. Lesson: %q. Question: %q. The child answered: %q. "+
			"Give one short, encouraging sentence of feedback.",
		lessonTitle, question, answer,
	)

	reqBody := map[string]interface{}{
		"prompt":      prompt,
		"max_tokens":  120,
		"temperature": 0.7,
	}
	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", err
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.Token)

	resp, err := c.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		log.Printf("FeedbackService /generate returned %d: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("feedback generation failed: %d", resp.StatusCode)
	}

	var out FeedbackResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", err
	}

	return out.Feedback, nil
}
