package services

import (
	"fmt"
	"sync"
	"time"

	"github.com/kapehan/kiosk-pos-api/models"
	"gorm.io/gorm"
)

// PCService is the terminal/session registry: a state machine per PC
// governing IP binding, access requests and admin-granted sessions.
// Every compound Session+PC change runs in one transaction so the two
// tables can never disagree, and the IP lookup cache is invalidated in
// the same call that unbinds an IP.
type PCService struct {
	db  *gorm.DB
	hub *Hub

	cacheMu sync.RWMutex
	ipCache map[string]uint // raw IP -> bound PC ID
}

var pcServiceInstance *PCService

// InitPCService initializes the PC registry with a database handle and
// an event hub for change notifications
func InitPCService(db *gorm.DB, hub *Hub) *PCService {
	pcServiceInstance = &PCService{
		db:      db,
		hub:     hub,
		ipCache: make(map[string]uint),
	}
	return pcServiceInstance
}

// GetPCService returns the initialized PC registry instance
func GetPCService() *PCService {
	return pcServiceInstance
}

func (s *PCService) publish(table, action string, payload interface{}) {
	if s.hub != nil {
		s.hub.Publish(table, action, payload)
	}
}

func (s *PCService) cacheSet(ip string, pcID uint) {
	s.cacheMu.Lock()
	s.ipCache[ip] = pcID
	s.cacheMu.Unlock()
}

func (s *PCService) cacheInvalidate(ip string) {
	s.cacheMu.Lock()
	delete(s.ipCache, ip)
	s.cacheMu.Unlock()
}

func (s *PCService) cacheGet(ip string) (uint, bool) {
	s.cacheMu.RLock()
	id, ok := s.ipCache[ip]
	s.cacheMu.RUnlock()
	return id, ok
}

// CreatePC registers a new terminal, offline and unbound.
func (s *PCService) CreatePC(pcNumber string) (*models.PC, error) {
	if pcNumber == "" {
		return nil, fmt.Errorf("%w: pc number is required", ErrInvalidInput)
	}
	pc := models.PC{PCNumber: pcNumber, Status: models.PCStatusOffline}
	if err := s.db.Create(&pc).Error; err != nil {
		return nil, err
	}
	s.publish("pcs", "insert", pc)
	return &pc, nil
}

// ListPCs returns all registered terminals.
func (s *PCService) ListPCs() ([]models.PC, error) {
	var pcs []models.PC
	if err := s.db.Order("pc_number ASC").Find(&pcs).Error; err != nil {
		return nil, err
	}
	return pcs, nil
}

// GetPC loads one terminal.
func (s *PCService) GetPC(id uint) (*models.PC, error) {
	var pc models.PC
	if err := s.db.First(&pc, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("%w: pc %d", ErrNotFound, id)
		}
		return nil, err
	}
	return &pc, nil
}

// CheckIPExists looks up the PC currently bound to an IP. Absence is a
// normal outcome: the return is (nil, nil), not an error. Hits are
// served from the lookup cache when possible; a stale cache entry is
// dropped and the query retried against the store.
func (s *PCService) CheckIPExists(ip string) (*models.PC, error) {
	if id, ok := s.cacheGet(ip); ok {
		var pc models.PC
		err := s.db.First(&pc, id).Error
		if err == nil && pc.IPAddress != nil && *pc.IPAddress == ip {
			return &pc, nil
		}
		if err != nil && err != gorm.ErrRecordNotFound {
			return nil, err
		}
		// Cache no longer matches what the store says.
		s.cacheInvalidate(ip)
	}

	var pc models.PC
	err := s.db.Where("ip_address = ?", ip).First(&pc).Error
	if err == gorm.ErrRecordNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.cacheSet(ip, pc.ID)
	return &pc, nil
}

// RequestAccess creates a pending session for a terminal and binds the
// requesting IP. A PC holds at most one non-terminal session; a second
// request while one is pending or active is rejected.
func (s *PCService) RequestAccess(pcID uint, ip string) (*models.Session, error) {
	if ip == "" {
		return nil, fmt.Errorf("%w: ip address is required", ErrInvalidInput)
	}

	var session models.Session
	var pc models.PC
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&pc, pcID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: pc %d", ErrNotFound, pcID)
			}
			return err
		}
		if pc.Status == models.PCStatusMaintenance {
			return fmt.Errorf("%w: pc %s is under maintenance", ErrConflict, pc.PCNumber)
		}

		var existing models.Session
		err := tx.Where("pc_id = ? AND status IN ?", pcID,
			[]models.SessionStatus{models.SessionStatusPending, models.SessionStatusActive}).
			First(&existing).Error
		if err == nil {
			return fmt.Errorf("%w: pc %s already has an open session", ErrConflict, pc.PCNumber)
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}

		session = models.Session{PCID: pcID, IPAddress: ip, Status: models.SessionStatusPending}
		if err := tx.Create(&session).Error; err != nil {
			return err
		}

		now := time.Now()
		pc.Status = models.PCStatusPending
		pc.IPAddress = &ip
		pc.CurrentSessionID = &session.ID
		pc.LastSeen = &now
		return tx.Model(&models.PC{}).Where("id = ?", pcID).Updates(map[string]interface{}{
			"status":             pc.Status,
			"ip_address":         ip,
			"current_session_id": session.ID,
			"last_seen":          now,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.cacheSet(ip, pcID)
	s.publish("sessions", "insert", session)
	s.publish("pcs", "update", pc)
	return &session, nil
}

// GrantAccess activates a pending session and brings the PC online.
func (s *PCService) GrantAccess(pcID, sessionID uint) error {
	var session models.Session
	var pc models.PC
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&session, sessionID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: session %d", ErrNotFound, sessionID)
			}
			return err
		}
		if session.PCID != pcID {
			return fmt.Errorf("%w: session %d does not belong to pc %d", ErrInvalidInput, sessionID, pcID)
		}
		if session.Status != models.SessionStatusPending {
			return fmt.Errorf("%w: session %d is not pending", ErrConflict, sessionID)
		}
		if err := tx.First(&pc, pcID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: pc %d", ErrNotFound, pcID)
			}
			return err
		}

		now := time.Now()
		session.Status = models.SessionStatusActive
		session.StartedAt = &now
		if err := tx.Model(&models.Session{}).Where("id = ?", sessionID).Updates(map[string]interface{}{
			"status":     session.Status,
			"started_at": now,
		}).Error; err != nil {
			return err
		}

		pc.Status = models.PCStatusOnline
		pc.SessionStartedAt = &now
		pc.LastSeen = &now
		return tx.Model(&models.PC{}).Where("id = ?", pcID).Updates(map[string]interface{}{
			"status":             pc.Status,
			"session_started_at": now,
			"last_seen":          now,
		}).Error
	})
	if err != nil {
		return err
	}

	s.publish("sessions", "update", session)
	s.publish("pcs", "update", pc)
	return nil
}

// DenyAccess rejects a pending session, takes the PC offline and clears
// the IP it had tentatively bound.
func (s *PCService) DenyAccess(pcID, sessionID uint) error {
	return s.closeSession(pcID, &sessionID, models.SessionStatusRejected)
}

// EndSession ends a terminal's current session normally.
func (s *PCService) EndSession(pcID uint) error {
	return s.closeSession(pcID, nil, models.SessionStatusEnded)
}

// KickClient forcibly ends a terminal's current session.
func (s *PCService) KickClient(pcID uint) error {
	return s.closeSession(pcID, nil, models.SessionStatusEnded)
}

// closeSession moves a session to a terminal state and resets the PC to
// offline with its IP binding cleared, atomically. The IP cache entry is
// invalidated in the same call, never left to the UI.
func (s *PCService) closeSession(pcID uint, sessionID *uint, final models.SessionStatus) error {
	var session models.Session
	var pc models.PC
	var boundIP string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&pc, pcID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: pc %d", ErrNotFound, pcID)
			}
			return err
		}

		q := tx.Where("pc_id = ? AND status IN ?", pcID,
			[]models.SessionStatus{models.SessionStatusPending, models.SessionStatusActive})
		if sessionID != nil {
			q = tx.Where("id = ? AND pc_id = ?", *sessionID, pcID)
		}
		if err := q.First(&session).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: no open session for pc %d", ErrNotFound, pcID)
			}
			return err
		}
		if session.Status.Terminal() {
			return fmt.Errorf("%w: session %d is already closed", ErrConflict, session.ID)
		}
		// Deny only applies before a grant; an active session is ended
		// or kicked, never rejected.
		if final == models.SessionStatusRejected && session.Status != models.SessionStatusPending {
			return fmt.Errorf("%w: session %d is already active", ErrInvalidTransition, session.ID)
		}

		now := time.Now()
		session.Status = final
		session.EndedAt = &now
		if err := tx.Model(&models.Session{}).Where("id = ?", session.ID).Updates(map[string]interface{}{
			"status":   final,
			"ended_at": now,
		}).Error; err != nil {
			return err
		}

		if pc.IPAddress != nil {
			boundIP = *pc.IPAddress
		}
		pc.Status = models.PCStatusOffline
		pc.IPAddress = nil
		pc.CurrentSessionID = nil
		pc.SessionStartedAt = nil
		return tx.Model(&models.PC{}).Where("id = ?", pcID).Updates(map[string]interface{}{
			"status":             models.PCStatusOffline,
			"ip_address":         nil,
			"current_session_id": nil,
			"session_started_at": nil,
		}).Error
	})
	if err != nil {
		return err
	}

	if boundIP != "" {
		s.cacheInvalidate(boundIP)
	}
	s.publish("sessions", "update", session)
	s.publish("pcs", "update", pc)
	return nil
}

// SetMaintenance puts a terminal into maintenance. An active session,
// if any, is ended in the same transaction.
func (s *PCService) SetMaintenance(pcID uint) error {
	var pc models.PC
	var boundIP string

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&pc, pcID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: pc %d", ErrNotFound, pcID)
			}
			return err
		}
		if pc.Status == models.PCStatusMaintenance {
			return fmt.Errorf("%w: pc %s is already under maintenance", ErrConflict, pc.PCNumber)
		}
		// Maintenance is reachable from offline or online only. A PC
		// with a pending access request is granted or denied first.
		if pc.Status == models.PCStatusPending {
			return fmt.Errorf("%w: pc %s has a pending access request", ErrInvalidTransition, pc.PCNumber)
		}

		var session models.Session
		err := tx.Where("pc_id = ? AND status = ?", pcID, models.SessionStatusActive).
			First(&session).Error
		if err == nil {
			now := time.Now()
			if err := tx.Model(&models.Session{}).Where("id = ?", session.ID).Updates(map[string]interface{}{
				"status":   models.SessionStatusEnded,
				"ended_at": now,
			}).Error; err != nil {
				return err
			}
		} else if err != gorm.ErrRecordNotFound {
			return err
		}

		if pc.IPAddress != nil {
			boundIP = *pc.IPAddress
		}
		pc.Status = models.PCStatusMaintenance
		pc.IPAddress = nil
		pc.CurrentSessionID = nil
		pc.SessionStartedAt = nil
		return tx.Model(&models.PC{}).Where("id = ?", pcID).Updates(map[string]interface{}{
			"status":             models.PCStatusMaintenance,
			"ip_address":         nil,
			"current_session_id": nil,
			"session_started_at": nil,
		}).Error
	})
	if err != nil {
		return err
	}

	if boundIP != "" {
		s.cacheInvalidate(boundIP)
	}
	s.publish("pcs", "update", pc)
	return nil
}

// RestoreFromMaintenance brings a terminal back to offline.
func (s *PCService) RestoreFromMaintenance(pcID uint) error {
	var pc models.PC
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&pc, pcID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: pc %d", ErrNotFound, pcID)
			}
			return err
		}
		if pc.Status != models.PCStatusMaintenance {
			return fmt.Errorf("%w: pc %s is not under maintenance", ErrConflict, pc.PCNumber)
		}
		pc.Status = models.PCStatusOffline
		return tx.Model(&models.PC{}).Where("id = ?", pcID).
			Update("status", models.PCStatusOffline).Error
	})
	if err != nil {
		return err
	}

	s.publish("pcs", "update", pc)
	return nil
}

// LogDetectedIP records an IP seen by the kiosk gate but not bound to
// any PC. Repeat sightings only bump LastSeen.
func (s *PCService) LogDetectedIP(ip string) (*models.DetectedIP, error) {
	if ip == "" {
		return nil, fmt.Errorf("%w: ip address is required", ErrInvalidInput)
	}

	now := time.Now()
	var detected models.DetectedIP
	err := s.db.Where("ip_address = ?", ip).First(&detected).Error
	if err == gorm.ErrRecordNotFound {
		detected = models.DetectedIP{
			IPAddress: ip,
			Status:    models.DetectedIPUnregistered,
			FirstSeen: now,
			LastSeen:  now,
		}
		if err := s.db.Create(&detected).Error; err != nil {
			return nil, err
		}
		s.publish("detected_ips", "insert", detected)
		return &detected, nil
	}
	if err != nil {
		return nil, err
	}

	detected.LastSeen = now
	if err := s.db.Model(&detected).Update("last_seen", now).Error; err != nil {
		return nil, err
	}
	s.publish("detected_ips", "update", detected)
	return &detected, nil
}

// ListDetectedIPs returns the quarantine table, most recently seen first.
func (s *PCService) ListDetectedIPs() ([]models.DetectedIP, error) {
	var detected []models.DetectedIP
	if err := s.db.Order("last_seen DESC").Find(&detected).Error; err != nil {
		return nil, err
	}
	return detected, nil
}

// AssignIPToPC binds a quarantined IP to a terminal and marks the
// detected-IP row registered, atomically.
func (s *PCService) AssignIPToPC(detectedID, pcID uint) error {
	var detected models.DetectedIP
	var pc models.PC

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&detected, detectedID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: detected ip %d", ErrNotFound, detectedID)
			}
			return err
		}
		if err := tx.First(&pc, pcID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				return fmt.Errorf("%w: pc %d", ErrNotFound, pcID)
			}
			return err
		}

		pc.IPAddress = &detected.IPAddress
		if err := tx.Model(&models.PC{}).Where("id = ?", pcID).
			Update("ip_address", detected.IPAddress).Error; err != nil {
			return err
		}

		detected.Status = models.DetectedIPRegistered
		return tx.Model(&models.DetectedIP{}).Where("id = ?", detectedID).
			Update("status", models.DetectedIPRegistered).Error
	})
	if err != nil {
		return err
	}

	// The binding changed; replace whatever the cache held for this IP.
	s.cacheSet(detected.IPAddress, pcID)
	s.publish("pcs", "update", pc)
	s.publish("detected_ips", "update", detected)
	return nil
}

// DeleteDetectedIP removes a quarantined IP.
func (s *PCService) DeleteDetectedIP(id uint) error {
	var detected models.DetectedIP
	if err := s.db.First(&detected, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return fmt.Errorf("%w: detected ip %d", ErrNotFound, id)
		}
		return err
	}
	if err := s.db.Delete(&detected).Error; err != nil {
		return err
	}
	s.publish("detected_ips", "delete", detected)
	return nil
}
