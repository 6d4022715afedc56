package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
)

// PersonRequest is one candidate in a comparison
type PersonRequest struct {
	Name     string `json:"name" example:"Ada Lovelace"`
	ImageURL string `json:"image_url" example:"https://example.com/people/ada.jpg"`
}

// CompareRequest is the body of POST /compare
type CompareRequest struct {
	TargetURL string          `json:"target_url" example:"https://example.com/photos/party.jpg"`
	People    []PersonRequest `json:"people"`
}

// MatchResponse is a candidate whose face matched the target
type MatchResponse struct {
	Name        string  `json:"name" example:"Ada Lovelace"`
	Probability float64 `json:"probability" example:"87"`
}

// CompareResponse lists matches ordered by probability, highest first
type CompareResponse struct {
	Matches []MatchResponse `json:"matches"`
}

// HealthResponse is returned by /health and /ready
type HealthResponse struct {
	Status   string `json:"status" example:"ready"`
	Version  string `json:"version,omitempty" example:"1.0.0"`
	Engine   string `json:"engine,omitempty" example:"deepface"`
	Database string `json:"database,omitempty" example:"up"`
}

// ErrorResponse represents a standard error response
type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Iris Face Comparison API",
		Version:     "v1.0.0",
		Description: "Compares the face in a target image against a list of people and returns the ones that match, most likely first",
		Host:        "localhost:3002",
		Path:        "/",
	})

	endpoints := []*endpoint.EndPoint{
		// POST /compare
		endpoint.New(
			endpoint.POST,
			"/compare",
			endpoint.WithTags("Compare"),
			endpoint.WithSummary("Compare a target face against people"),
			endpoint.WithDescription("Downloads the target image and every person's image, extracts one face from each and returns the people whose similarity is above the match threshold. Images that cannot be fetched or contain no face are left out. An unusable target yields an empty list."),
			endpoint.WithConsume([]mime.MIME{mime.JSON}),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithBody(CompareRequest{}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(CompareResponse{}, "200", "Comparison completed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "BAD_REQUEST", Message: "Invalid request"}, "400", "Bad Request"),
				response.New(ErrorResponse{Code: "UNSUPPORTED_MEDIA_TYPE", Message: "Expected request with Content-Type: application/json"}, "415", "Unsupported Media Type"),
				response.New(ErrorResponse{Code: "VALIDATION_FAILED", Message: "missing field target_url"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "TOO_MANY_CANDIDATES", Message: "Too many people in a single comparison"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "RATE_LIMIT_EXCEEDED", Message: "Rate limit exceeded, please try again later"}, "429", "Too Many Requests"),
			}),
		),

		// GET /health
		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Liveness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Service is up"),
			}),
		),

		// GET /ready
		endpoint.New(
			endpoint.GET,
			"/ready",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Readiness probe"),
			endpoint.WithDescription("Reports the active face engine and, when the comparison audit is enabled, database connectivity"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Service is ready"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(HealthResponse{Status: "unavailable", Database: "down"}, "503", "Service Unavailable"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
