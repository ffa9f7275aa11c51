package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/rs/zerolog"
)

// Phase is the room's coarse stage. Transitions are strictly sequential:
// lobby -> round_active -> reveal -> round_active ... -> reveal -> finished.
type Phase int

const (
	PhaseLobby Phase = iota
	PhaseRoundActive
	PhaseReveal
	PhaseFinished
)

// Join failure reasons. The strings are shown verbatim to clients, so they
// are part of the protocol.
var (
	ErrRoomNotFound    = errors.New("Room not found")
	ErrInvalidPassword = errors.New("Invalid password")
	ErrGameInProgress  = errors.New("Game already in progress")
	ErrRoomFull        = errors.New("Room full")
	ErrRoomClosed      = errors.New("Room closed")
	ErrNameRequired    = errors.New("Name required")
)

// Policy holds the per-room behavior knobs that are configuration rather
// than game settings: they cannot be changed by the host.
type Policy struct {
	MaxPlayers     int
	RevealDuration time.Duration
	ReconnectGrace time.Duration
	RequireReady   bool
}

// Deps are the room's collaborators.
type Deps struct {
	Clock  Clock
	Tracks TrackProvider
	Mirror ScoreMirror
	Logger zerolog.Logger
}

// JoinRequest asks the room to attach a connection as a player. PlayerID is
// nonzero only when a resume token proved ownership of an existing seat.
type JoinRequest struct {
	Name     string
	PlayerID int
	Conn     Conn
}

// JoinResult reports the seat a connection was attached to.
type JoinResult struct {
	PlayerID  int
	Name      string
	Reconnect bool
}

// RoomInfo is the lock-free summary the registry reads for listing, health
// and reaping without entering the room's serialized section.
type RoomInfo struct {
	Code        string
	HostName    string
	PlayerCount int
	Connected   int
	HasPassword bool
	Phase       Phase
	CreatedAt   time.Time
	EmptySince  time.Time // zero while at least one connection is live
}

type timerKind int

const (
	timerRoundExpired timerKind = iota
	timerRevealDone
	timerGraceExpired
)

type joinCmd struct {
	req   JoinRequest
	reply chan joinReply
}

type joinReply struct {
	res JoinResult
	err error
}

type actionCmd struct {
	playerID int
	action   Action
}

type disconnectCmd struct {
	playerID int
	connID   string
}

type timerCmd struct {
	kind     timerKind
	seq      int
	playerID int
}

type trackCmd struct {
	seq   int
	track Track
	err   error
}

type snapshotCmd struct {
	reply chan StateSnapshot
}

// Guess is one player's recorded submission for the current round. At most
// one exists per player per round; it is immutable once created.
type Guess struct {
	Text    string
	Elapsed float64
	Correct bool
	Points  int
}

// Room owns one game's authoritative state. All mutation flows through the
// inbox and is applied by a single goroutine, so concurrent guesses, settings
// changes and timer firings never interleave partially: each command is
// applied atomically and followed by its broadcasts before the next one is
// looked at.
type Room struct {
	code         string
	passwordHash string
	policy       Policy
	clock        Clock
	tracks       TrackProvider
	mirror       ScoreMirror
	log          zerolog.Logger

	inbox chan any
	done  chan struct{}
	once  sync.Once

	info atomic.Pointer[RoomInfo]

	// Everything below is owned by the run loop.
	phase      Phase
	hostID     int
	players    []*Player
	settings   Settings
	scores     map[int]int
	round      int
	roundSeq   int // bumped per round start attempt; stale timers carry old values
	track      Track
	roundStart time.Time
	guesses    map[int]*Guess
	fetching   bool
	createdAt  time.Time
	emptySince time.Time
}

func newRoom(code, hostName, passwordHash string, policy Policy, deps Deps) (*Room, int) {
	r := &Room{
		code:         code,
		passwordHash: passwordHash,
		policy:       policy,
		clock:        deps.Clock,
		tracks:       deps.Tracks,
		mirror:       deps.Mirror,
		log:          deps.Logger.With().Str("room", code).Logger(),
		inbox:        make(chan any, 256),
		done:         make(chan struct{}),
		phase:        PhaseLobby,
		settings:     DefaultSettings(),
		scores:       make(map[int]int),
		guesses:      make(map[int]*Guess),
		createdAt:    deps.Clock.Now(),
	}
	// No live connections yet, so the idle clock starts at creation.
	r.emptySince = r.createdAt

	// The host seat is reserved detached; the creator claims it over the
	// websocket with the token returned by create. An unclaimed seat ages
	// out through the same grace path as any disconnect.
	host := &Player{
		ID:       r.newPlayerID(),
		Name:     hostName,
		JoinedAt: r.createdAt,
	}
	r.players = append(r.players, host)
	r.hostID = host.ID
	r.scheduleGrace(host)

	r.publishInfo()
	return r, host.ID
}

// Code returns the room's identifier.
func (r *Room) Code() string { return r.code }

// Info returns the room's latest published summary.
func (r *Room) Info() RoomInfo { return *r.info.Load() }

// CheckPassword verifies a join password. The hash is immutable after
// creation, so this runs outside the serialized section; argon2id comparison
// is constant-time. Rooms without a password accept anything.
func (r *Room) CheckPassword(password string) bool {
	if r.passwordHash == "" {
		return true
	}
	match, err := argon2id.ComparePasswordAndHash(password, r.passwordHash)
	return err == nil && match
}

// Join attaches a connection, blocking until the room has processed the
// request or ctx expires.
func (r *Room) Join(ctx context.Context, req JoinRequest) (JoinResult, error) {
	reply := make(chan joinReply, 1)
	select {
	case r.inbox <- joinCmd{req: req, reply: reply}:
	case <-r.done:
		return JoinResult{}, ErrRoomClosed
	case <-ctx.Done():
		return JoinResult{}, ctx.Err()
	}
	select {
	case rep := <-reply:
		return rep.res, rep.err
	case <-ctx.Done():
		return JoinResult{}, ctx.Err()
	}
}

// Submit queues a validated client action on behalf of playerID. Actions
// arriving while the room is busy (for example during a track fetch) queue
// rather than error.
func (r *Room) Submit(playerID int, a Action) {
	select {
	case r.inbox <- actionCmd{playerID: playerID, action: a}:
	case <-r.done:
	}
}

// Disconnect tells the room a player's transport is gone. The player is
// detached, not removed: the seat survives for the reconnect grace window.
func (r *Room) Disconnect(playerID int, connID string) {
	select {
	case r.inbox <- disconnectCmd{playerID: playerID, connID: connID}:
	case <-r.done:
	}
}

// Snapshot returns the room state as of all previously queued commands.
func (r *Room) Snapshot(ctx context.Context) (StateSnapshot, error) {
	reply := make(chan StateSnapshot, 1)
	select {
	case r.inbox <- snapshotCmd{reply: reply}:
	case <-r.done:
		return StateSnapshot{}, ErrRoomClosed
	case <-ctx.Done():
		return StateSnapshot{}, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return StateSnapshot{}, ctx.Err()
	}
}

// Close stops the run loop and closes every live connection. Idempotent.
func (r *Room) Close() {
	r.once.Do(func() { close(r.done) })
}

func (r *Room) run() {
	defer func() {
		for _, p := range r.players {
			p.stopGraceTimer()
			if p.conn != nil {
				p.conn.Close("Room closed")
			}
		}
	}()
	for {
		select {
		case cmd := <-r.inbox:
			r.handle(cmd)
			r.publishInfo()
		case <-r.done:
			return
		}
	}
}

func (r *Room) handle(cmd any) {
	switch c := cmd.(type) {
	case joinCmd:
		res, err := r.handleJoin(c.req)
		c.reply <- joinReply{res: res, err: err}
	case actionCmd:
		r.handleAction(c.playerID, c.action)
	case disconnectCmd:
		r.handleDisconnect(c.playerID, c.connID)
	case timerCmd:
		r.handleTimer(c)
	case trackCmd:
		r.handleTrack(c)
	case snapshotCmd:
		c.reply <- r.snapshot()
	}
}

// --- joins, disconnects, membership ---

func (r *Room) handleJoin(req JoinRequest) (JoinResult, error) {
	// Seat claim or reconnect proven by resume token.
	if req.PlayerID != 0 {
		if p := r.playerByID(req.PlayerID); p != nil {
			return r.attach(p, req.Conn), nil
		}
		// Token for a seat that aged out; fall through to the normal rules.
	}

	// A finished room behaves like a lobby again so the group can rematch.
	if r.phase != PhaseLobby && r.phase != PhaseFinished {
		// Mid-game joins are allowed only as reconnections: the name must
		// match a disconnected player's.
		if p := r.detachedByName(req.Name); p != nil {
			return r.attach(p, req.Conn), nil
		}
		return JoinResult{}, ErrGameInProgress
	}

	// In the lobby a matching detached name also resumes its seat, so a
	// dropped client that rejoins keeps its id.
	if p := r.detachedByName(req.Name); p != nil {
		return r.attach(p, req.Conn), nil
	}

	// Reached on a fresh join, or when a token's seat already aged out; a
	// new seat always needs a display name.
	if req.Name == "" {
		return JoinResult{}, ErrNameRequired
	}

	if r.connectedCount() >= r.policy.MaxPlayers {
		return JoinResult{}, ErrRoomFull
	}

	p := &Player{
		ID:       r.newPlayerID(),
		Name:     req.Name,
		JoinedAt: r.clock.Now(),
	}
	r.players = append(r.players, p)
	res := r.attach(p, req.Conn)
	res.Reconnect = false
	r.log.Info().Int("player", p.ID).Str("name", p.Name).Msg("player joined")
	return res, nil
}

func (r *Room) attach(p *Player, conn Conn) JoinResult {
	reconnect := p.graceTimer != nil || p.conn != nil
	p.stopGraceTimer()
	if p.conn != nil {
		// A second connection for the same seat replaces the zombie.
		p.conn.Close("Replaced by a new connection")
	}
	p.conn = conn
	r.emptySince = time.Time{}

	// The broadcast reaches the new connection too, giving it the full state.
	r.broadcast(stateMessage(r.snapshot()))
	return JoinResult{PlayerID: p.ID, Name: p.Name, Reconnect: reconnect}
}

func (r *Room) handleDisconnect(playerID int, connID string) {
	p := r.playerByID(playerID)
	if p == nil || p.conn == nil || p.conn.ID() != connID {
		return // stale notice from a connection that was already replaced
	}
	r.detach(p)
	r.broadcast(stateMessage(r.snapshot()))
}

func (r *Room) detach(p *Player) {
	p.conn = nil
	r.scheduleGrace(p)
	if r.connectedCount() == 0 && r.emptySince.IsZero() {
		r.emptySince = r.clock.Now()
	}
	r.log.Info().Int("player", p.ID).Msg("player detached, grace window started")
}

func (r *Room) scheduleGrace(p *Player) {
	id := p.ID
	p.graceTimer = r.clock.AfterFunc(r.policy.ReconnectGrace, func() {
		select {
		case r.inbox <- timerCmd{kind: timerGraceExpired, playerID: id}:
		case <-r.done:
		}
	})
}

// removePlayer permanently drops a seat: score, guesses and host status are
// released, and the host role moves to the longest-connected remaining
// player (join order is the deterministic tie-break).
func (r *Room) removePlayer(p *Player, reason string) {
	p.stopGraceTimer()
	if p.conn != nil {
		p.conn.Close(reason)
		p.conn = nil
	}
	for i, q := range r.players {
		if q == p {
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}
	delete(r.scores, p.ID)
	delete(r.guesses, p.ID)

	if p.ID == r.hostID && len(r.players) > 0 {
		r.hostID = r.players[0].ID
		r.log.Info().Int("host", r.hostID).Msg("host reassigned")
	}
	if r.connectedCount() == 0 && r.emptySince.IsZero() {
		r.emptySince = r.clock.Now()
	}
	r.log.Info().Int("player", p.ID).Str("reason", reason).Msg("player removed")
}

// --- client actions ---

func (r *Room) handleAction(playerID int, action Action) {
	p := r.playerByID(playerID)
	if p == nil {
		return
	}

	switch a := action.(type) {
	case SetReadyAction:
		if r.phase != PhaseLobby && r.phase != PhaseFinished {
			return
		}
		p.Ready = a.Ready
		r.broadcast(stateMessage(r.snapshot()))

	case UpdateSettingsAction:
		r.handleUpdateSettings(p, a.Settings)

	case StartGameAction:
		r.handleStartGame(p)

	case GuessAction:
		r.handleGuess(p, a.Text)

	case KickPlayerAction:
		r.handleKick(p, a.PlayerID)

	case ChatAction:
		text := SanitizeText(a.Text)
		if text == "" {
			return
		}
		r.broadcast(chatMessage(p.Name, text))

	case SuggestAction:
		// Served by the connection handler against the suggestion index;
		// it never enters the serialized section.
	}
}

func (r *Room) handleUpdateSettings(p *Player, s Settings) {
	if p.ID != r.hostID {
		p.send(ErrorMessage("Only the host can change settings"))
		return
	}
	if r.phase != PhaseLobby && r.phase != PhaseFinished {
		p.send(ErrorMessage("Cannot change settings during game"))
		return
	}
	if err := s.Validate(); err != nil {
		p.send(ErrorMessage(err.Error()))
		return
	}
	r.settings = s
	r.broadcast(settingsUpdatedMessage(s))
	r.broadcast(stateMessage(r.snapshot()))
}

func (r *Room) handleStartGame(p *Player) {
	if p.ID != r.hostID || r.fetching {
		return
	}
	if r.phase != PhaseLobby && r.phase != PhaseFinished {
		return
	}
	if r.policy.RequireReady {
		for _, q := range r.players {
			if q.ID != r.hostID && q.Connected() && !q.Ready {
				p.send(ErrorMessage("Not all players are ready"))
				return
			}
		}
	}
	r.round = 0
	r.scores = make(map[int]int, len(r.players))
	for _, q := range r.players {
		r.scores[q.ID] = 0
	}
	r.log.Info().Int("rounds", r.settings.TotalRounds).Str("mode", string(r.settings.GameType)).Msg("game starting")
	r.beginRoundFetch()
}

func (r *Room) handleGuess(p *Player, text string) {
	if r.phase != PhaseRoundActive {
		return // late or early guesses are dropped, never scored
	}
	if _, dup := r.guesses[p.ID]; dup {
		return // one guess per player per round; resubmission is rejected
	}

	text = SanitizeText(text)
	elapsed := r.clock.Now().Sub(r.roundStart).Seconds()
	correct := AnswerMatches(text, r.track.Answer)
	points := Score(correct, elapsed, float64(r.settings.MusicDuration), r.settings.GameType)

	r.guesses[p.ID] = &Guess{Text: text, Elapsed: elapsed, Correct: correct, Points: points}
	r.scores[p.ID] += points

	p.send(guessResultMessage(correct, points))
	r.broadcast(stateMessage(r.snapshot()))

	if r.allConnectedGuessed() {
		r.enterReveal()
	}
}

func (r *Room) handleKick(p *Player, targetID int) {
	if p.ID != r.hostID {
		return
	}
	if r.phase != PhaseLobby && r.phase != PhaseFinished {
		return
	}
	target := r.playerByID(targetID)
	if target == nil {
		return
	}
	name := target.Name
	r.removePlayer(target, "Kicked by host")
	r.broadcast(notification("player_kicked", fmt.Sprintf("%s was kicked by the host", name), nil))
	r.broadcast(stateMessage(r.snapshot()))
}

// --- round lifecycle ---

// beginRoundFetch fetches the next round's track off the serialized section:
// the room keeps draining its inbox while the provider call is in flight,
// and the result comes back as a command tagged with the fetch's sequence.
func (r *Room) beginRoundFetch() {
	r.roundSeq++
	seq := r.roundSeq
	r.fetching = true

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
		defer cancel()

		track, err := r.tracks.QuizTrack(ctx)
		if err != nil {
			r.log.Warn().Err(err).Msg("track fetch failed, retrying once")
			track, err = r.tracks.QuizTrack(ctx)
		}
		select {
		case r.inbox <- trackCmd{seq: seq, track: track, err: err}:
		case <-r.done:
		}
	}()
}

func (r *Room) handleTrack(c trackCmd) {
	if c.seq != r.roundSeq || !r.fetching {
		return
	}
	r.fetching = false

	if c.err != nil {
		// Retried once already; skip the round rather than stall the room.
		r.round++
		r.log.Warn().Err(c.err).Int("round", r.round).Msg("skipping round, track unavailable")
		r.broadcast(notification("round_skipped",
			fmt.Sprintf("Round %d/%d skipped: no track available", r.round, r.settings.TotalRounds), nil))
		r.scheduleTimer(r.policy.RevealDuration, timerRevealDone)
		return
	}

	r.round++
	r.phase = PhaseRoundActive
	r.track = c.track
	r.roundStart = r.clock.Now()
	r.guesses = make(map[int]*Guess)

	r.broadcast(notification("round_start",
		fmt.Sprintf("Round %d/%d starting! Listen carefully...", r.round, r.settings.TotalRounds), nil))
	r.broadcast(roundStartMessage())
	r.broadcast(stateMessage(r.snapshot()))

	r.scheduleTimer(time.Duration(r.settings.MusicDuration)*time.Second, timerRoundExpired)
	r.log.Info().Int("round", r.round).Msg("round started")
}

func (r *Room) scheduleTimer(d time.Duration, kind timerKind) {
	seq := r.roundSeq
	r.clock.AfterFunc(d, func() {
		select {
		case r.inbox <- timerCmd{kind: kind, seq: seq}:
		case <-r.done:
		}
	})
}

func (r *Room) handleTimer(c timerCmd) {
	switch c.kind {
	case timerRoundExpired:
		// Stale and duplicate firings are no-ops: the transition happens at
		// most once per round regardless of how many expiry events arrive.
		if c.seq != r.roundSeq || r.phase != PhaseRoundActive {
			return
		}
		r.enterReveal()

	case timerRevealDone:
		if c.seq != r.roundSeq || r.phase == PhaseRoundActive || r.phase == PhaseFinished || r.fetching {
			return
		}
		if r.round >= r.settings.TotalRounds {
			r.finishGame()
			return
		}
		r.beginRoundFetch()

	case timerGraceExpired:
		p := r.playerByID(c.playerID)
		if p == nil || p.conn != nil {
			return // reconnected in time, or already gone
		}
		r.removePlayer(p, "Disconnected")
		r.broadcast(stateMessage(r.snapshot()))
		// The departed player may have been the only one still to answer.
		if r.phase == PhaseRoundActive && r.allConnectedGuessed() {
			r.enterReveal()
		}
	}
}

func (r *Room) enterReveal() {
	r.phase = PhaseReveal

	r.broadcast(roundEndMessage(r.track, r.copyScores()))
	r.broadcast(stateMessage(r.snapshot()))
	r.broadcast(notification("round_end",
		fmt.Sprintf("Time's up! The correct answer was: %s", r.track.Answer), nil))
	r.broadcastGuessSummary()

	r.scheduleTimer(r.policy.RevealDuration, timerRevealDone)
	r.log.Info().Int("round", r.round).Msg("round revealed")
}

// broadcastGuessSummary reports who guessed correctly this round, fastest
// first, along with points (and times in speed mode).
func (r *Room) broadcastGuessSummary() {
	type hit struct {
		name    string
		points  int
		elapsed float64
	}
	var correct []hit
	var wrong []string

	for _, p := range r.players {
		g, ok := r.guesses[p.ID]
		if !ok {
			continue
		}
		if g.Correct {
			correct = append(correct, hit{name: p.Name, points: g.Points, elapsed: g.Elapsed})
		} else {
			wrong = append(wrong, p.Name)
		}
	}
	sort.Slice(correct, func(i, j int) bool { return correct[i].elapsed < correct[j].elapsed })

	if len(correct) == 0 && len(wrong) == 0 {
		r.broadcast(notification("no_guesses", "Nobody made a guess this round!", nil))
		return
	}
	if len(correct) > 0 {
		details := make([]string, len(correct))
		names := make([]string, len(correct))
		for i, h := range correct {
			names[i] = h.name
			if r.settings.GameType == ModeSpeed {
				details[i] = fmt.Sprintf("%s (+%d pts, %.2fs)", h.name, h.points, h.elapsed)
			} else {
				details[i] = fmt.Sprintf("%s (+%d pts)", h.name, h.points)
			}
		}
		r.broadcast(notification("correct_guesses", "Correct: "+joinComma(details), names))
	}
	if len(wrong) > 0 {
		r.broadcast(notification("wrong_guesses", "Wrong: "+joinComma(wrong), nil))
	}
}

func (r *Room) finishGame() {
	r.phase = PhaseFinished

	// The finished room is a lobby again; ready flags start over.
	for _, p := range r.players {
		p.Ready = false
	}

	standings := r.standings()
	if len(standings) > 0 {
		winner := standings[0]
		r.broadcast(notification("game_over",
			fmt.Sprintf("Game Over! Winner: %s with %d points!", winner.Name, winner.Score), nil))
	}
	r.broadcast(gameOverMessage(r.copyScores()))
	r.broadcast(stateMessage(r.snapshot()))

	r.mirror.Record(r.code, standings)
	r.log.Info().Msg("game finished")
}

// --- helpers (run loop only) ---

func (r *Room) playerByID(id int) *Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) detachedByName(name string) *Player {
	for _, p := range r.players {
		if p.conn == nil && p.Name == name {
			return p
		}
	}
	return nil
}

func (r *Room) connectedCount() int {
	n := 0
	for _, p := range r.players {
		if p.conn != nil {
			n++
		}
	}
	return n
}

func (r *Room) allConnectedGuessed() bool {
	connected := 0
	for _, p := range r.players {
		if p.conn == nil {
			continue
		}
		connected++
		if _, ok := r.guesses[p.ID]; !ok {
			return false
		}
	}
	return connected > 0
}

// standings orders players by score descending; join order breaks ties.
func (r *Room) standings() []Standing {
	out := make([]Standing, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, Standing{PlayerID: p.ID, Name: p.Name, Score: r.scores[p.ID]})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func (r *Room) copyScores() map[int]int {
	out := make(map[int]int, len(r.scores))
	for id, s := range r.scores {
		out[id] = s
	}
	return out
}

func (r *Room) newPlayerID() int {
	for {
		id := 10000 + rand.IntN(90000)
		if r.playerByID(id) == nil {
			return id
		}
	}
}

func (r *Room) snapshot() StateSnapshot {
	players := make([]PlayerView, 0, len(r.players))
	for _, p := range r.players {
		players = append(players, PlayerView{
			ID:        p.ID,
			Name:      p.Name,
			IsReady:   p.Ready,
			Connected: p.conn != nil,
		})
	}

	var track *TrackView
	if r.phase == PhaseRoundActive {
		track = &TrackView{PreviewURL: r.track.PreviewURL}
	} else if r.phase == PhaseReveal || r.phase == PhaseFinished {
		if r.track.PreviewURL != "" || r.track.Answer != "" {
			track = &TrackView{
				PreviewURL: r.track.PreviewURL,
				Image:      r.track.ImageURL,
				Title:      r.track.Title,
				Answer:     r.track.Answer,
			}
		}
	}

	return StateSnapshot{
		RoomID:        r.code,
		HostID:        r.hostID,
		Players:       players,
		IsGameActive:  r.phase != PhaseLobby && r.phase != PhaseFinished,
		IsRoundActive: r.phase == PhaseRoundActive,
		IsRevealPhase: r.phase == PhaseReveal,
		CurrentRound:  r.round,
		TotalRounds:   r.settings.TotalRounds,
		MusicDuration: r.settings.MusicDuration,
		GameType:      r.settings.GameType,
		CurrentTrack:  track,
		Scores:        r.copyScores(),
		HasPassword:   r.passwordHash != "",
	}
}

func (r *Room) broadcast(data []byte) {
	for _, p := range r.players {
		if p.conn == nil {
			continue
		}
		if !p.conn.Send(data) {
			// Write buffer full or socket gone: prune it and let the seat
			// ride out the grace window like any other disconnect.
			p.conn.Close("Connection stalled")
			r.detach(p)
		}
	}
}

func (r *Room) publishInfo() {
	hostName := ""
	if h := r.playerByID(r.hostID); h != nil {
		hostName = h.Name
	}
	r.info.Store(&RoomInfo{
		Code:        r.code,
		HostName:    hostName,
		PlayerCount: len(r.players),
		Connected:   r.connectedCount(),
		HasPassword: r.passwordHash != "",
		Phase:       r.phase,
		CreatedAt:   r.createdAt,
		EmptySince:  r.emptySince,
	})
}

func joinComma(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
