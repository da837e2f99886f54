package httptransport

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type StartCycleRequest struct {
	VoteThreshold int64 `json:"vote_threshold"`
}

type CycleResponse struct {
	CycleID       string `json:"cycle_id"`
	Phase         string `json:"phase"`
	VoteThreshold int64  `json:"vote_threshold"`
	Winner        string `json:"winner,omitempty"`
}

type RegisterCandidateRequest struct {
	DisplayName string `json:"display_name"`
}

type CandidateResponse struct {
	Account      string `json:"account"`
	DisplayName  string `json:"display_name"`
	Active       bool   `json:"active"`
	Votes        int64  `json:"votes"`
	PledgedTotal int64  `json:"pledged_total"`
	RosterIndex  int    `json:"roster_index"`
}

type CastVoteRequest struct {
	Candidate string `json:"candidate"`
}

type VoteResponse struct {
	Voter           string `json:"voter"`
	ChosenCandidate string `json:"chosen_candidate"`
}

type PledgeRequest struct {
	Candidate string `json:"candidate"`
	Amount    int64  `json:"amount"`
}

type PledgeResponse struct {
	Backer        string `json:"backer"`
	AmountPledged int64  `json:"amount_pledged"`
}

type DelegateRequest struct {
	Candidate string `json:"candidate"`
}

type ElectResponse struct {
	Winner string `json:"winner"`
}

type ClaimResponse struct {
	Claimant string `json:"claimant"`
	Amount   int64  `json:"amount"`
}

type CycleStatusResponse struct {
	CycleID        string `json:"cycle_id"`
	Phase          string `json:"phase"`
	VoteThreshold  int64  `json:"vote_threshold"`
	Winner         string `json:"winner,omitempty"`
	CandidateCount int    `json:"candidate_count"`
	ActiveCount    int    `json:"active_count"`
	EscrowedTotal  int64  `json:"escrowed_total"`
}

type StandingItem struct {
	Account      string `json:"account"`
	DisplayName  string `json:"display_name"`
	Active       bool   `json:"active"`
	Votes        int64  `json:"votes"`
	PledgedTotal int64  `json:"pledged_total"`
	RosterIndex  int    `json:"roster_index"`
	IsWinner     bool   `json:"is_winner"`
}

type StandingsResponse struct {
	Items []StandingItem `json:"items"`
}
