package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"maybach_liquor/internal/cache"
	"maybach_liquor/internal/database"
	"maybach_liquor/internal/models"
	"maybach_liquor/internal/utils"

	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = errors.New("email ou mot de passe incorrect")
	ErrInvalidInput       = errors.New("nom, email et mot de passe sont obligatoires")
	ErrEmailTaken         = errors.New("un compte avec cet email existe déjà")
	ErrNotLoggedIn        = errors.New("non authentifié")
)

// Session est l'état d'authentification d'une session navigateur.
// L'utilisateur connecté est gardé dans le stockage local (sans le hash du mot de passe).
type Session struct {
	mu       sync.Mutex
	key      string
	storage  cache.Storage
	users    database.UserRepository
	latency  time.Duration
	log      *zap.Logger
	user     *models.User
	loaded   bool
	inflight int
}

func newSession(key string, storage cache.Storage, users database.UserRepository, latency time.Duration, log *zap.Logger) *Session {
	return &Session{key: key, storage: storage, users: users, latency: latency, log: log}
}

// Load relit l'utilisateur persisté ; un blob illisible est supprimé
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := s.storage.Get(ctx, s.key)
	switch {
	case errors.Is(err, cache.ErrMiss):
		s.user = nil
	case err != nil:
		return fmt.Errorf("lecture session: %w", err)
	default:
		var u models.User
		if jsonErr := json.Unmarshal([]byte(raw), &u); jsonErr != nil || u.ID == "" {
			s.log.Warn("⚠️ Utilisateur persisté illisible, suppression", zap.String("key", s.key))
			if delErr := s.storage.Delete(ctx, s.key); delErr != nil {
				s.log.Warn("⚠️ Suppression impossible", zap.Error(delErr))
			}
			s.user = nil
		} else {
			s.user = &u
		}
	}
	s.loaded = true
	return nil
}

// User retourne une copie de l'utilisateur connecté
func (s *Session) User() (models.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}

func (s *Session) IsAdmin() bool {
	u, ok := s.User()
	return ok && u.IsAdmin()
}

// IsLoading est vrai tant que la session n'est pas chargée ou qu'un login/signup est en cours
func (s *Session) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.loaded || s.inflight > 0
}

// Login vérifie le mot de passe après la latence simulée.
// En cas d'échec ni l'état ni le stockage ne sont modifiés.
func (s *Session) Login(ctx context.Context, email, password string) (models.User, error) {
	done := s.begin()
	defer done()

	if err := utils.Sleep(ctx, s.latency); err != nil {
		return models.User{}, err
	}

	u, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, database.ErrNotFound) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}

	ok, err := utils.VerifyPassword(password, u.Password)
	if err != nil {
		s.log.Warn("⚠️ Hash de mot de passe invalide", zap.String("user_id", u.ID), zap.Error(err))
		return models.User{}, ErrInvalidCredentials
	}
	if !ok {
		return models.User{}, ErrInvalidCredentials
	}

	if err := s.commit(ctx, u); err != nil {
		return models.User{}, err
	}
	s.log.Info("✅ Connexion", zap.String("user_id", u.ID), zap.String("role", string(u.Role)))
	return sanitize(u), nil
}

// Signup crée un compte client puis connecte la session
func (s *Session) Signup(ctx context.Context, name, email, password string) (models.User, error) {
	done := s.begin()
	defer done()

	name, email = strings.TrimSpace(name), strings.TrimSpace(email)
	if name == "" || email == "" || password == "" {
		return models.User{}, ErrInvalidInput
	}

	if err := utils.Sleep(ctx, s.latency); err != nil {
		return models.User{}, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash mot de passe: %w", err)
	}

	u, err := s.users.CreateUser(ctx, models.User{
		Name:     name,
		Email:    email,
		Role:     models.RoleCustomer,
		Password: hash,
	})
	if errors.Is(err, database.ErrDuplicateEmail) {
		return models.User{}, ErrEmailTaken
	}
	if err != nil {
		return models.User{}, err
	}

	if err := s.commit(ctx, u); err != nil {
		return models.User{}, err
	}
	s.log.Info("✅ Nouveau compte", zap.String("user_id", u.ID))
	return sanitize(u), nil
}

func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Delete(ctx, s.key); err != nil {
		return fmt.Errorf("suppression session: %w", err)
	}
	s.user = nil
	return nil
}

// UpdateProfile modifie nom et email ; le rôle ne change jamais par ce chemin.
// Un champ vide garde la valeur actuelle.
func (s *Session) UpdateProfile(ctx context.Context, name, email string) (models.User, error) {
	current, ok := s.User()
	if !ok {
		return models.User{}, ErrNotLoggedIn
	}

	updated, err := updateUser(ctx, s.users, current.ID, name, email)
	if err != nil {
		return models.User{}, err
	}
	if err := s.commit(ctx, updated); err != nil {
		return models.User{}, err
	}
	return updated, nil
}

func updateUser(ctx context.Context, users database.UserRepository, userID, name, email string) (models.User, error) {
	stored, err := users.GetUser(ctx, userID)
	if err != nil {
		return models.User{}, err
	}
	if n := strings.TrimSpace(name); n != "" {
		stored.Name = n
	}
	if e := strings.TrimSpace(email); e != "" {
		stored.Email = e
	}

	updated, err := users.UpdateUser(ctx, stored)
	if errors.Is(err, database.ErrDuplicateEmail) {
		return models.User{}, ErrEmailTaken
	}
	if err != nil {
		return models.User{}, err
	}
	return sanitize(updated), nil
}

// idle indique si la session est anonyme et si un login/signup est en cours
func (s *Session) idle() (anonymous, busy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user == nil, s.inflight > 0
}

func (s *Session) begin() func() {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.inflight--
		s.mu.Unlock()
	}
}

// commit persiste puis applique ; le contexte est revérifié pour qu'un appel annulé ne touche à rien
func (s *Session) commit(ctx context.Context, u models.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u = sanitize(u)
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.storage.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("sauvegarde session: %w", err)
	}
	s.user = &u
	return nil
}

func sanitize(u models.User) models.User {
	u.Password = ""
	return u
}
