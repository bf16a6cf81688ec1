package e2e

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Mojasagwe/taxiRankApp/domain"
)

// Backend is an in-memory double of the platform API, faithful to its
// envelope shape and error codes. It exists so the client core can be
// exercised end to end over real HTTP.
type Backend struct {
	Server *httptest.Server

	mu           sync.Mutex
	secret       []byte
	users        map[string]*backendUser
	nextUserID   uint
	ranks        map[uint]*domain.Rank
	requests     map[string]*domain.AdminRegistrationRequest
	pendingCreds map[string]submissionSecret
	nextRequest  int
	revoked      map[string]struct{}
	// adminRecords tracks which admin users still have a server-side
	// admin record; removing one simulates the fetch-before-mutate race.
	adminRecords map[uint]struct{}
}

type backendUser struct {
	user         domain.User
	passwordHash []byte
}

type submissionSecret struct {
	passwordHash []byte
	paymentPref  domain.PaymentMethod
	phoneNumber  string
}

// NewBackend starts the API double with a seeded super admin reviewer
// and a handful of ranks.
func NewBackend(t *testing.T) *Backend {
	t.Helper()
	gin.SetMode(gin.TestMode)

	b := &Backend{
		secret:       []byte("e2e-signing-secret"),
		users:        map[string]*backendUser{},
		ranks:        map[uint]*domain.Rank{},
		requests:     map[string]*domain.AdminRegistrationRequest{},
		pendingCreds: map[string]submissionSecret{},
		revoked:      map[string]struct{}{},
		adminRecords: map[uint]struct{}{},
	}

	b.SeedRank(1, "PTA", "Pretoria CBD", "Pretoria")
	b.SeedRank(2, "JHB", "Johannesburg Park", "Johannesburg")
	b.SeedRank(3, "BOS", "Bosman Station", "Pretoria")
	b.SeedUser("root@taxirank.example", "rootpass99", domain.RoleSuperAdmin)

	b.Server = httptest.NewServer(b.router())
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the backend base URL.
func (b *Backend) URL() string { return b.Server.URL }

// SeedRank registers a rank with no administrators.
func (b *Backend) SeedRank(id uint, code, name, city string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ranks[id] = &domain.Rank{
		ID:         id,
		Code:       code,
		Name:       name,
		City:       city,
		IsActive:   true,
		RankAdmins: []domain.AdminRef{},
		CreatedAt:  time.Now().UTC(),
		UpdatedAt:  time.Now().UTC(),
	}
}

// SeedUser registers a user and returns it. Admin users get a live
// admin record.
func (b *Backend) SeedUser(email, password string, role domain.Role) *domain.User {
	b.mu.Lock()
	defer b.mu.Unlock()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	b.nextUserID++
	user := domain.User{
		ID:        b.nextUserID,
		FirstName: "Seed",
		LastName:  "User",
		Email:     email,
		Role:      role,
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	b.users[email] = &backendUser{user: user, passwordHash: hash}
	if role == domain.RoleAdmin {
		b.adminRecords[user.ID] = struct{}{}
	}
	copied := user
	return &copied
}

// AssignRank puts the user on the rank's admin list.
func (b *Backend) AssignRank(email string, rankID uint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	stored := b.users[email]
	rank := b.ranks[rankID]
	rank.RankAdmins = append(rank.RankAdmins, domain.AdminRef{
		ID:        stored.user.ID,
		FirstName: stored.user.FirstName,
		LastName:  stored.user.LastName,
		Email:     stored.user.Email,
	})
	stored.user.ManagedRanks = append(stored.user.ManagedRanks, rank.Code)
}

// RemoveAdminRecord deletes the server-side admin record while the
// user's session stays live, reproducing the dangling-admin race.
func (b *Backend) RemoveAdminRecord(email string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.adminRecords, b.users[email].user.ID)
}

// RevokeAllTokens invalidates every issued token, forcing 401s.
func (b *Backend) RevokeAllTokens() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.revoked["*"] = struct{}{}
}

func (b *Backend) issueToken(email string) string {
	claims := jwt.MapClaims{
		"sub": email,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(b.secret)
	if err != nil {
		panic(err)
	}
	return token
}

func ok(c *gin.Context, status int, data any) {
	body := gin.H{"success": true}
	if data != nil {
		body["data"] = data
	}
	c.JSON(status, body)
}

func fail(c *gin.Context, status int, message, code string) {
	body := gin.H{"success": false, "error": message}
	if code != "" {
		body["code"] = code
	}
	c.AbortWithStatusJSON(status, body)
}

func (b *Backend) router() *gin.Engine {
	r := gin.New()

	r.POST("/auth/login", b.handleLogin)
	r.POST("/auth/register", b.handleRegister)

	authed := r.Group("/", b.requireAuth())
	authed.GET("/auth/me", b.handleMe)
	authed.GET("/auth/test", func(c *gin.Context) { ok(c, http.StatusOK, nil) })
	authed.POST("/auth/logout", b.handleLogout)

	authed.GET("/admin-registration/available-ranks", b.handleAvailableRanks)
	authed.POST("/admin-registration/request", b.handleSubmitRegistration)
	authed.GET("/admin-registration/status/PENDING", b.handlePendingRequests)
	authed.GET("/admin/request/:id", b.handleRequestDetails)
	authed.POST("/admin/request/:id/review", b.handleReview)
	authed.GET("/ranks/:id/admins", b.handleRankAdmins)
	authed.GET("/admin/dashboard-stats", b.handleDashboardStats)
	authed.POST("/rank-assignment-requests", b.handleAssignmentRequest)
	authed.DELETE("/rank-admins/self-unassign/:rankId", b.handleSelfUnassign)

	return r
}

func (b *Backend) requireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || raw == "" {
			fail(c, http.StatusUnauthorized, "Missing token", "AUTH_INVALID")
			return
		}

		b.mu.Lock()
		_, revokedAll := b.revoked["*"]
		_, revokedOne := b.revoked[raw]
		b.mu.Unlock()
		if revokedAll || revokedOne {
			fail(c, http.StatusUnauthorized, "Token revoked", "AUTH_INVALID")
			return
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, okAlg := t.Method.(*jwt.SigningMethodHMAC); !okAlg {
				return nil, fmt.Errorf("unexpected signing method")
			}
			return b.secret, nil
		})
		if err != nil || !token.Valid {
			fail(c, http.StatusUnauthorized, "Invalid or expired token", "AUTH_INVALID")
			return
		}
		claims := token.Claims.(jwt.MapClaims)
		email, _ := claims["sub"].(string)

		b.mu.Lock()
		stored, exists := b.users[email]
		b.mu.Unlock()
		if !exists {
			fail(c, http.StatusUnauthorized, "Unknown principal", "AUTH_INVALID")
			return
		}
		c.Set("user", stored.user)
		c.Set("token", raw)
		c.Next()
	}
}

func currentUser(c *gin.Context) domain.User {
	return c.MustGet("user").(domain.User)
}

func (b *Backend) handleLogin(c *gin.Context) {
	var req domain.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Malformed request", "")
		return
	}

	b.mu.Lock()
	stored, exists := b.users[req.Email]
	b.mu.Unlock()
	if !exists || bcrypt.CompareHashAndPassword(stored.passwordHash, []byte(req.Password)) != nil {
		fail(c, http.StatusBadRequest, "Invalid email or password", "")
		return
	}

	// Login responses carry the principal under "rider"; registration
	// under "user". The client normalizes both.
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"rider": stored.user,
			"token": b.issueToken(req.Email),
		},
	})
}

func (b *Backend) handleRegister(c *gin.Context) {
	var req domain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Malformed request", "")
		return
	}

	b.mu.Lock()
	if _, exists := b.users[req.Email]; exists {
		b.mu.Unlock()
		fail(c, http.StatusBadRequest, "Email already registered", "")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		b.mu.Unlock()
		fail(c, http.StatusInternalServerError, "Registration failed", "")
		return
	}
	b.nextUserID++
	user := domain.User{
		ID:                     b.nextUserID,
		FirstName:              req.FirstName,
		LastName:               req.LastName,
		Email:                  req.Email,
		PhoneNumber:            req.PhoneNumber,
		Role:                   domain.RoleUser,
		PreferredPaymentMethod: req.PreferredPaymentMethod,
		CreatedAt:              time.Now().UTC(),
		UpdatedAt:              time.Now().UTC(),
	}
	b.users[req.Email] = &backendUser{user: user, passwordHash: hash}
	b.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"user":  user,
			"token": b.issueToken(req.Email),
		},
	})
}

func (b *Backend) handleMe(c *gin.Context) {
	ok(c, http.StatusOK, gin.H{"user": currentUser(c)})
}

func (b *Backend) handleLogout(c *gin.Context) {
	b.mu.Lock()
	b.revoked[c.MustGet("token").(string)] = struct{}{}
	b.mu.Unlock()
	ok(c, http.StatusOK, nil)
}

func (b *Backend) availableLocked() []domain.Rank {
	available := []domain.Rank{}
	for _, rank := range b.ranks {
		if rank.IsActive && len(rank.RankAdmins) == 0 {
			available = append(available, *rank)
		}
	}
	return available
}

func (b *Backend) handleAvailableRanks(c *gin.Context) {
	b.mu.Lock()
	available := b.availableLocked()
	b.mu.Unlock()
	ok(c, http.StatusOK, available)
}

func (b *Backend) handleSubmitRegistration(c *gin.Context) {
	var sub domain.AdminRegistrationSubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		fail(c, http.StatusBadRequest, "Malformed request", "")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	available := map[string]struct{}{}
	for _, rank := range b.availableLocked() {
		available[rank.Code] = struct{}{}
	}
	var stale []string
	for _, code := range sub.SelectedRankCodes {
		if _, okCode := available[code]; !okCode {
			stale = append(stale, code)
		}
	}
	if len(stale) > 0 {
		fail(c, http.StatusConflict,
			"Selected ranks are no longer available: "+strings.Join(stale, ", "),
			"STALE_RANK_SELECTION")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(sub.Password), bcrypt.MinCost)
	if err != nil {
		fail(c, http.StatusInternalServerError, "Failed to submit registration request", "")
		return
	}

	b.nextRequest++
	id := fmt.Sprintf("req-%d", b.nextRequest)
	b.requests[id] = &domain.AdminRegistrationRequest{
		ID:          id,
		FirstName:   sub.FirstName,
		LastName:    sub.LastName,
		Email:       sub.Email,
		PhoneNumber: sub.PhoneNumber,
		RankCodes:   append([]string{}, sub.SelectedRankCodes...),
		Status:      domain.StatusPending,
		SubmittedAt: time.Now().UTC(),
	}
	b.pendingCreds[id] = submissionSecret{
		passwordHash: hash,
		paymentPref:  sub.PreferredPaymentMethod,
		phoneNumber:  sub.PhoneNumber,
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    gin.H{"requestId": id},
	})
}

func (b *Backend) requireReviewer(c *gin.Context) bool {
	if currentUser(c).Role != domain.RoleSuperAdmin {
		fail(c, http.StatusForbidden, "Insufficient permissions", "")
		return false
	}
	return true
}

func (b *Backend) handlePendingRequests(c *gin.Context) {
	if !b.requireReviewer(c) {
		return
	}
	b.mu.Lock()
	pending := []domain.AdminRegistrationRequest{}
	for _, request := range b.requests {
		if request.Status == domain.StatusPending {
			pending = append(pending, *request)
		}
	}
	b.mu.Unlock()
	ok(c, http.StatusOK, pending)
}

func (b *Backend) handleRequestDetails(c *gin.Context) {
	if !b.requireReviewer(c) {
		return
	}
	b.mu.Lock()
	request, exists := b.requests[c.Param("id")]
	b.mu.Unlock()
	if !exists {
		fail(c, http.StatusNotFound, "Request not found", "REQUEST_NOT_FOUND")
		return
	}
	ok(c, http.StatusOK, *request)
}

func (b *Backend) handleReview(c *gin.Context) {
	if !b.requireReviewer(c) {
		return
	}
	var decision domain.ReviewDecision
	if err := c.ShouldBindJSON(&decision); err != nil {
		fail(c, http.StatusBadRequest, "Malformed request", "")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	request, exists := b.requests[c.Param("id")]
	if !exists {
		fail(c, http.StatusNotFound, "Request not found", "REQUEST_NOT_FOUND")
		return
	}
	if request.Status.Terminal() {
		fail(c, http.StatusConflict, "Request has already been reviewed", "REQUEST_ALREADY_REVIEWED")
		return
	}

	now := time.Now().UTC()
	reviewer := currentUser(c)
	request.ReviewedAt = &now
	request.ReviewedBy = reviewer.Email

	if !decision.Approved {
		request.Status = domain.StatusRejected
		request.RejectionReason = decision.RejectionReason
		ok(c, http.StatusOK, gin.H{"request": *request})
		return
	}

	// Approval must re-check availability: another approval may have
	// claimed a selected rank while this request sat in the queue.
	available := map[string]uint{}
	for _, rank := range b.availableLocked() {
		available[rank.Code] = rank.ID
	}
	for _, code := range request.RankCodes {
		if _, okCode := available[code]; !okCode {
			fail(c, http.StatusConflict,
				"Selected ranks are no longer available: "+code,
				"STALE_RANK_SELECTION")
			return
		}
	}

	secret := b.pendingCreds[request.ID]
	b.nextUserID++
	admin := domain.User{
		ID:                     b.nextUserID,
		FirstName:              request.FirstName,
		LastName:               request.LastName,
		Email:                  request.Email,
		PhoneNumber:            secret.phoneNumber,
		Role:                   domain.RoleAdmin,
		PreferredPaymentMethod: secret.paymentPref,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	b.users[request.Email] = &backendUser{user: admin, passwordHash: secret.passwordHash}
	b.adminRecords[admin.ID] = struct{}{}
	delete(b.pendingCreds, request.ID)

	for _, code := range request.RankCodes {
		rank := b.ranks[available[code]]
		rank.RankAdmins = append(rank.RankAdmins, domain.AdminRef{
			ID:        admin.ID,
			FirstName: admin.FirstName,
			LastName:  admin.LastName,
			Email:     admin.Email,
		})
		stored := b.users[request.Email]
		stored.user.ManagedRanks = append(stored.user.ManagedRanks, code)
	}

	request.Status = domain.StatusApproved
	ok(c, http.StatusOK, gin.H{"request": *request})
}

func (b *Backend) handleRankAdmins(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "Malformed rank id", "")
		return
	}
	b.mu.Lock()
	rank, exists := b.ranks[uint(id)]
	b.mu.Unlock()
	if !exists {
		fail(c, http.StatusNotFound, "Rank not found", "")
		return
	}
	ok(c, http.StatusOK, rank.RankAdmins)
}

func (b *Backend) managedRanksLocked(userID uint) []domain.ManagedRank {
	managed := []domain.ManagedRank{}
	for _, rank := range b.ranks {
		for _, admin := range rank.RankAdmins {
			if admin.ID == userID {
				managed = append(managed, domain.ManagedRank{
					ID:   rank.ID,
					Name: rank.Name,
					Code: rank.Code,
					City: rank.City,
				})
			}
		}
	}
	return managed
}

func (b *Backend) handleDashboardStats(c *gin.Context) {
	user := currentUser(c)
	if user.Role != domain.RoleAdmin {
		fail(c, http.StatusForbidden, "Insufficient permissions", "")
		return
	}
	b.mu.Lock()
	managed := b.managedRanksLocked(user.ID)
	b.mu.Unlock()
	ok(c, http.StatusOK, domain.DashboardStats{
		ManagedRanksCount: len(managed),
		ManagedRanks:      managed,
	})
}

func (b *Backend) handleAssignmentRequest(c *gin.Context) {
	user := currentUser(c)
	if user.Role != domain.RoleAdmin {
		fail(c, http.StatusForbidden, "Insufficient permissions", "")
		return
	}

	var req struct {
		RankCode      string `json:"rankCode"`
		RequestReason string `json:"requestReason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "Malformed request", "")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, hasRecord := b.adminRecords[user.ID]; !hasRecord {
		fail(c, http.StatusNotFound, "Admin record not found", "ADMIN_RECORD_MISSING")
		return
	}
	for _, rank := range b.ranks {
		if rank.Code == req.RankCode {
			ok(c, http.StatusCreated, nil)
			return
		}
	}
	fail(c, http.StatusNotFound, "Rank not found", "")
}

func (b *Backend) handleSelfUnassign(c *gin.Context) {
	user := currentUser(c)
	if user.Role != domain.RoleAdmin {
		fail(c, http.StatusForbidden, "Insufficient permissions", "")
		return
	}
	id, err := strconv.ParseUint(c.Param("rankId"), 10, 64)
	if err != nil {
		fail(c, http.StatusBadRequest, "Malformed rank id", "")
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	rank, exists := b.ranks[uint(id)]
	if !exists {
		fail(c, http.StatusNotFound, "Rank not found", "")
		return
	}
	kept := rank.RankAdmins[:0]
	removed := false
	for _, admin := range rank.RankAdmins {
		if admin.ID == user.ID {
			removed = true
			continue
		}
		kept = append(kept, admin)
	}
	rank.RankAdmins = kept
	if !removed {
		fail(c, http.StatusNotFound, "Not assigned to this rank", "")
		return
	}

	stored := b.users[user.Email]
	keptCodes := stored.user.ManagedRanks[:0]
	for _, code := range stored.user.ManagedRanks {
		if code != rank.Code {
			keptCodes = append(keptCodes, code)
		}
	}
	stored.user.ManagedRanks = keptCodes

	ok(c, http.StatusOK, nil)
}
