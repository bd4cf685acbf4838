// Package collabtest provides an in-memory fake of the deal room backend
// for tests: the auth, deals and messages collaborators plus the live
// message channel. It issues real signed tokens and enforces the same
// status rules server-side so client tests can observe authoritative
// rejections and rewrites.
package collabtest

import (
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/dealroom-client/internal/domain"
)

type userRecord struct {
	ID           string
	Username     string
	PasswordHash string
	Role         domain.Role
}

// Server is a fake deal room backend listening on loopback.
type Server struct {
	App *fiber.App

	// TokenOverride, when set, is returned verbatim from login instead of a
	// signed token. Lets tests exercise the malformed-payload path.
	TokenOverride string
	// RewriteStatus, when set, replaces the status actually applied by a
	// transition, simulating server-side rules diverging from the request.
	RewriteStatus func(domain.DealStatus) domain.DealStatus

	mu       sync.Mutex
	users    map[string]*userRecord
	deals    map[string]*domain.Deal
	messages map[string][]domain.ChatMessage
	watchers map[string][]*websocket.Conn

	secret  []byte
	baseURL string
	live    *httptest.Server
}

var upgrader = websocket.Upgrader{}

// NewServer starts the fake backend and registers cleanup with t.
func NewServer(t *testing.T) *Server {
	t.Helper()

	s := &Server{
		users:    make(map[string]*userRecord),
		deals:    make(map[string]*domain.Deal),
		messages: make(map[string][]domain.ChatMessage),
		watchers: make(map[string][]*websocket.Conn),
		secret:   []byte("collabtest-secret"),
	}

	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	app.Post("/auth/register", s.handleRegister)
	app.Post("/auth/login", s.handleLogin)

	protected := app.Group("", s.requireAuth)
	protected.Get("/deals", s.handleListDeals)
	protected.Post("/deals", s.handleCreateDeal)
	protected.Get("/deals/:id", s.handleGetDeal)
	protected.Put("/deals/:id", s.handleUpdateDeal)
	protected.Get("/messages/:dealId", s.handleListMessages)
	protected.Post("/messages", s.handleSendMessage)
	s.App = app

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("collabtest: listen: %v", err)
	}
	s.baseURL = "http://" + ln.Addr().String()
	go func() { _ = app.Listener(ln) }()

	s.live = httptest.NewServer(http.HandlerFunc(s.handleLive))

	t.Cleanup(s.Close)
	return s
}

// URL returns the REST base URL.
func (s *Server) URL() string { return s.baseURL }

// LiveURL returns the websocket address of the live channel.
func (s *Server) LiveURL() string {
	return "ws" + strings.TrimPrefix(s.live.URL, "http")
}

// Close shuts both listeners down.
func (s *Server) Close() {
	s.mu.Lock()
	for _, conns := range s.watchers {
		for _, conn := range conns {
			_ = conn.Close()
		}
	}
	s.watchers = make(map[string][]*websocket.Conn)
	s.mu.Unlock()

	s.live.Close()
	_ = s.App.Shutdown()
}

// SeedUser registers an account directly and returns its ID.
func (s *Server) SeedUser(t *testing.T, username, password string, role domain.Role) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("collabtest: hash password: %v", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec := &userRecord{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: string(hash),
		Role:         role,
	}
	s.users[username] = rec
	return rec.ID
}

// SeedDeal inserts a deal directly and returns a copy.
func (s *Server) SeedDeal(title string, price float64, seller string, status domain.DealStatus) domain.Deal {
	deal := domain.Deal{
		ID:        uuid.NewString(),
		Title:     title,
		Price:     price,
		Seller:    seller,
		Status:    status,
		CreatedAt: time.Now().UTC(),
	}
	s.mu.Lock()
	s.deals[deal.ID] = &deal
	s.mu.Unlock()
	return deal
}

// IssueToken signs a bearer token for the given identity.
func (s *Server) IssueToken(subject string, role domain.Role) string {
	claims := jwt.MapClaims{
		"id":   subject,
		"sub":  subject,
		"role": string(role),
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		panic(err)
	}
	return signed
}

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var req struct {
		Username string      `json:"username"`
		Password string      `json:"password"`
		Role     domain.Role `json:"role"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "invalid payload"})
	}
	if req.Username == "" || req.Password == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "username and password required"})
	}
	if !req.Role.Valid() {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "role must be buyer or seller"})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{"message": "hashing failed"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.users[req.Username]; exists {
		return c.Status(http.StatusConflict).JSON(fiber.Map{"message": "username already taken"})
	}
	s.users[req.Username] = &userRecord{
		ID:           uuid.NewString(),
		Username:     req.Username,
		PasswordHash: string(hash),
		Role:         req.Role,
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": "registered"})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req domain.Credentials
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "invalid payload"})
	}

	s.mu.Lock()
	rec, ok := s.users[req.Username]
	override := s.TokenOverride
	s.mu.Unlock()

	if !ok || bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(req.Password)) != nil {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "invalid username or password"})
	}

	if override != "" {
		return c.JSON(fiber.Map{"token": override})
	}
	return c.JSON(fiber.Map{"token": s.IssueToken(rec.ID, rec.Role)})
}

func (s *Server) requireAuth(c *fiber.Ctx) error {
	header := c.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "missing bearer token"})
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{"message": "invalid or expired token"})
	}

	subject, _ := claims["id"].(string)
	role, _ := claims["role"].(string)
	c.Locals("subject", subject)
	c.Locals("role", role)
	return c.Next()
}

func (s *Server) handleListDeals(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	deals := make([]domain.Deal, 0, len(s.deals))
	for _, deal := range s.deals {
		deals = append(deals, *deal)
	}
	return c.JSON(deals)
}

func (s *Server) handleCreateDeal(c *fiber.Ctx) error {
	var req struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Price       float64 `json:"price"`
		Seller      string  `json:"seller"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "invalid payload"})
	}
	if req.Title == "" || req.Price < 0 {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "title required and price must be non-negative"})
	}

	deal := &domain.Deal{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
		Seller:      req.Seller,
		Status:      domain.DealStatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	s.mu.Lock()
	s.deals[deal.ID] = deal
	s.mu.Unlock()
	return c.Status(http.StatusCreated).JSON(deal)
}

func (s *Server) handleGetDeal(c *fiber.Ctx) error {
	s.mu.Lock()
	deal, ok := s.deals[c.Params("id")]
	s.mu.Unlock()
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"message": "deal not found"})
	}
	return c.JSON(deal)
}

func (s *Server) handleUpdateDeal(c *fiber.Ctx) error {
	var req struct {
		Status domain.DealStatus `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "invalid payload"})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	deal, ok := s.deals[c.Params("id")]
	if !ok {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{"message": "deal not found"})
	}
	if !domain.CanTransition(deal.Status, req.Status) {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"message": "illegal status transition from " + string(deal.Status),
		})
	}

	applied := req.Status
	if s.RewriteStatus != nil {
		applied = s.RewriteStatus(req.Status)
	}
	deal.Status = applied
	return c.JSON(deal)
}

func (s *Server) handleListMessages(c *fiber.Ctx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := s.messages[c.Params("dealId")]
	out := make([]domain.ChatMessage, len(msgs))
	copy(out, msgs)
	return c.JSON(out)
}

func (s *Server) handleSendMessage(c *fiber.Ctx) error {
	var req struct {
		DealID  string `json:"dealId"`
		Content string `json:"content"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "invalid payload"})
	}
	if strings.TrimSpace(req.Content) == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{"message": "content required"})
	}

	sender, _ := c.Locals("subject").(string)
	msg := domain.ChatMessage{
		DealID:    req.DealID,
		Sender:    sender,
		Content:   req.Content,
		Timestamp: time.Now().UTC(),
	}

	s.mu.Lock()
	s.messages[req.DealID] = append(s.messages[req.DealID], msg)
	conns := append([]*websocket.Conn{}, s.watchers[req.DealID]...)
	s.mu.Unlock()

	for _, conn := range conns {
		_ = conn.WriteJSON(msg)
	}
	return c.Status(http.StatusCreated).JSON(msg)
}

// WatcherCount reports how many live connections follow a deal. Tests use it
// to wait for a join to land before broadcasting.
func (s *Server) WatcherCount(dealID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.watchers[dealID])
}

// Broadcast pushes a message to live watchers without going through the REST
// surface.
func (s *Server) Broadcast(msg domain.ChatMessage) {
	s.mu.Lock()
	conns := append([]*websocket.Conn{}, s.watchers[msg.DealID]...)
	s.mu.Unlock()
	for _, conn := range conns {
		_ = conn.WriteJSON(msg)
	}
}

func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}

	var join struct {
		Event  string `json:"event"`
		DealID string `json:"dealId"`
	}
	if err := conn.ReadJSON(&join); err != nil || join.Event != "join" {
		_ = conn.Close()
		return
	}

	s.mu.Lock()
	s.watchers[join.DealID] = append(s.watchers[join.DealID], conn)
	s.mu.Unlock()

	// drain until the client goes away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.mu.Lock()
	conns := s.watchers[join.DealID]
	for i, candidate := range conns {
		if candidate == conn {
			s.watchers[join.DealID] = append(conns[:i], conns[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	_ = conn.Close()
}
