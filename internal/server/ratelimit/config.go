package ratelimit

import "time"

// Budgets shared by the routes that cost model calls.
const (
	// BudgetWorkflow covers full workflow runs, streamed or not.
	BudgetWorkflow = "workflow"
	// BudgetBatch covers batch grading.
	BudgetBatch = "batch"
	// BudgetLLM covers every route that makes a single model call.
	BudgetLLM = "llm"
)

// Defaults used when the configuration leaves a value unset.
const (
	DefaultLimit           = 1000
	DefaultWindow          = time.Minute
	DefaultCleanupInterval = 5 * time.Minute
	DefaultLLMPerMinute    = 60
	DefaultWorkflowPerHour = 10
)

// EndpointConfig limits the requests of one route, or of every route under
// Path when Path ends in "/".
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int
	Window time.Duration
	// Burst defaults to Limit.
	Burst int
	// Budget names the bucket the route draws from. Routes with the same
	// budget share it; an empty budget gives the route its own.
	Budget string
}

// bucketKey identifies the bucket a client uses for a route.
func (e *EndpointConfig) bucketKey(clientID, method string) string {
	if e.Budget != "" {
		return clientID + "|" + e.Budget
	}
	return clientID + "|" + method + " " + e.Path
}

// Tiers sets the request budgets of the model-backed routes.
type Tiers struct {
	// LLMPerMinute bounds single-call routes under /jd/ and /resume/.
	LLMPerMinute int
	// WorkflowPerHour bounds workflow runs and batch grading.
	WorkflowPerHour int
}

// DefaultConfig returns an enabled limiter configuration with the default tiers.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    DefaultLimit,
		DefaultWindow:   DefaultWindow,
		CleanupInterval: DefaultCleanupInterval,
		Whitelist:       map[string]bool{},
		Blacklist:       map[string]bool{},
		EndpointConfigs: DefaultEndpointConfigs(Tiers{}),
	}
}

// DefaultEndpointConfigs returns the route limits for the given tiers. A
// workflow run makes four model calls, so runs and batches get an hourly
// budget; the stream route draws from the same budget as the plain one.
func DefaultEndpointConfigs(t Tiers) []EndpointConfig {
	if t.LLMPerMinute <= 0 {
		t.LLMPerMinute = DefaultLLMPerMinute
	}
	if t.WorkflowPerHour <= 0 {
		t.WorkflowPerHour = DefaultWorkflowPerHour
	}
	burst := max(1, t.WorkflowPerHour/5)

	return []EndpointConfig{
		{Path: "/workflow/run", Method: "POST", Limit: t.WorkflowPerHour, Window: time.Hour, Burst: burst, Budget: BudgetWorkflow},
		{Path: "/workflow/run/stream", Method: "POST", Limit: t.WorkflowPerHour, Window: time.Hour, Burst: burst, Budget: BudgetWorkflow},
		{Path: "/resume/grade/batch", Method: "POST", Limit: t.WorkflowPerHour, Window: time.Hour, Burst: burst, Budget: BudgetBatch},

		{Path: "/jd/", Method: "POST", Limit: t.LLMPerMinute, Window: time.Minute, Burst: max(1, t.LLMPerMinute/6), Budget: BudgetLLM},
		{Path: "/resume/", Method: "POST", Limit: t.LLMPerMinute, Window: time.Minute, Burst: max(1, t.LLMPerMinute/6), Budget: BudgetLLM},
	}
}

// ClientSet builds a whitelist or blacklist from client addresses.
func ClientSet(addrs []string) map[string]bool {
	set := make(map[string]bool, len(addrs))
	for _, addr := range addrs {
		if addr != "" {
			set[addr] = true
		}
	}
	return set
}
