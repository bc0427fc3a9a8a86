package screens

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"aufgussplan/internal/logger"
	"aufgussplan/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/skip2/go-qrcode"
)

const (
	msgNotLoggedIn   = "Nicht angemeldet"
	msgSaved         = "Bildschirm gespeichert"
	msgInvalidInput  = "Ungueltige Eingabe"
	msgInternal      = "Interner Serverfehler"
	msgNotAllowed    = "HTTP-Methode nicht unterstuetzt"
	qrSize           = 256
	maxScreenPayload = 1 << 20
)

// AdminChecker reports whether the request carries a valid admin session.
type AdminChecker interface {
	IsAdmin(r *http.Request) bool
}

type Handler struct {
	Store    *Store
	Admin    AdminChecker
	BaseURL  string
	Logger   *logger.Logger
	validate *validator.Validate
}

func NewHandler(store *Store, admin AdminChecker, baseURL string, log *logger.Logger) *Handler {
	return &Handler{
		Store:    store,
		Admin:    admin,
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Logger:   log,
		validate: validator.New(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.HandleFunc("/api/bildschirme", h.HandleScreens)
	r.Get("/api/bildschirme/{id}/qr.png", h.QRCode)
}

// HandleScreens serves GET (list or ?screen_id) and admin-only POST.
func (h *Handler) HandleScreens(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		h.getScreens(w, r)
	case http.MethodPost:
		if h.Admin == nil || !h.Admin.IsAdmin(r) {
			h.Logger.LogSecurity("SCREEN_WRITE_DENIED", fmt.Sprintf("unauthenticated screen update from %s", r.RemoteAddr))
			utils.WriteJSON(w, http.StatusUnauthorized, utils.ErrorResponse(msgNotLoggedIn))
			return
		}
		h.saveScreen(w, r)
	default:
		utils.WriteJSON(w, http.StatusMethodNotAllowed, utils.ErrorResponse(msgNotAllowed))
	}
}

func (h *Handler) getScreens(w http.ResponseWriter, r *http.Request) {
	// A missing, zero or non-numeric screen_id lists every screen.
	if id, err := strconv.Atoi(r.URL.Query().Get("screen_id")); err == nil && id > 0 {
		screen, ad, err := h.Store.Get(id)
		if err != nil {
			h.writeStoreError(w, err)
			return
		}
		utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Bildschirm geladen", map[string]interface{}{
			"screen":    screen,
			"global_ad": ad,
		}))
		return
	}

	screens, ad, err := h.Store.List()
	if err != nil {
		h.writeStoreError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse("Bildschirme geladen", map[string]interface{}{
		"screens":   screens,
		"global_ad": ad,
	}))
}

// flexInt accepts a JSON number, a numeric string or null.
type flexInt struct {
	Value int64
	Set   bool
}

func (f *flexInt) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	f.Value, f.Set = v, true
	return nil
}

type globalAdRequest struct {
	Path *string `json:"path" validate:"omitempty,max=512"`
	Type string  `json:"type"`
}

type saveRequest struct {
	ScreenID       flexInt          `json:"screen_id"`
	Mode           string           `json:"mode" validate:"max=16"`
	PlanID         flexInt          `json:"plan_id"`
	ImagePath      *string          `json:"image_path" validate:"omitempty,max=512"`
	BackgroundPath *string          `json:"background_path" validate:"omitempty,max=512"`
	GlobalAd       *globalAdRequest `json:"global_ad" validate:"omitempty"`
	GlobalAdPath   *string          `json:"global_ad_path" validate:"omitempty,max=512"`
	GlobalAdType   *string          `json:"global_ad_type"`
}

func (req *saveRequest) fromForm(r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	str := func(key string) *string {
		if _, ok := r.PostForm[key]; !ok {
			return nil
		}
		v := r.PostForm.Get(key)
		return &v
	}
	num := func(key string) flexInt {
		var f flexInt
		if v := str(key); v != nil {
			f.UnmarshalJSON([]byte(*v))
		}
		return f
	}
	req.ScreenID = num("screen_id")
	req.PlanID = num("plan_id")
	req.Mode = r.PostForm.Get("mode")
	req.ImagePath = str("image_path")
	req.BackgroundPath = str("background_path")
	req.GlobalAdPath = str("global_ad_path")
	req.GlobalAdType = str("global_ad_type")
	return nil
}

func (req *saveRequest) input() SaveInput {
	in := SaveInput{
		ScreenID:       int(req.ScreenID.Value),
		Mode:           req.Mode,
		ImagePath:      req.ImagePath,
		BackgroundPath: req.BackgroundPath,
	}
	if req.PlanID.Set {
		id := req.PlanID.Value
		in.PlanID = &id
	}
	switch {
	case req.GlobalAd != nil:
		in.GlobalAd = &GlobalAdInput{Path: req.GlobalAd.Path, Type: req.GlobalAd.Type}
	case req.GlobalAdPath != nil || req.GlobalAdType != nil:
		ad := &GlobalAdInput{Path: req.GlobalAdPath}
		if req.GlobalAdType != nil {
			ad.Type = *req.GlobalAdType
		}
		in.GlobalAd = ad
	}
	return in
}

func (h *Handler) saveScreen(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxScreenPayload)

	var req saveRequest
	var err error
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		err = json.NewDecoder(r.Body).Decode(&req)
	} else {
		err = req.fromForm(r)
	}
	if err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse(msgInvalidInput))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse(msgInvalidInput))
		return
	}

	screen, ad, err := h.Store.Save(req.input())
	if err != nil {
		h.writeStoreError(w, err)
		return
	}

	h.Logger.Info("SCREENS", fmt.Sprintf("Screen configuration saved (screen %d)", req.ScreenID.Value))
	utils.WriteJSON(w, http.StatusOK, utils.SuccessResponse(msgSaved, map[string]interface{}{
		"screen":    screen,
		"global_ad": ad,
	}))
}

// QRCode renders a PNG QR code pointing at the screen's display page.
func (h *Handler) QRCode(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || !h.Store.valid(id) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse(ErrInvalidScreen.Error()))
		return
	}

	png, err := qrcode.Encode(h.DisplayURL(id), qrcode.Medium, qrSize)
	if err != nil {
		h.Logger.Error("SCREENS", fmt.Sprintf("Failed to generate QR code: %v", err))
		utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse(msgInternal))
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(png)
}

// DisplayURL is the public page a screen opens.
func (h *Handler) DisplayURL(id int) string {
	return fmt.Sprintf("%s/bildschirm/%d", h.BaseURL, id)
}

func (h *Handler) writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrInvalidScreen) {
		utils.WriteJSON(w, http.StatusBadRequest, utils.ErrorResponse(ErrInvalidScreen.Error()))
		return
	}
	h.Logger.Error("SCREENS", fmt.Sprintf("Screen store failed: %v", err))
	utils.WriteJSON(w, http.StatusInternalServerError, utils.ErrorResponse(msgInternal))
}
