package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go_canteen/canteenapi/models"
	"go_canteen/canteenapi/store"
)

type menuItemView struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}

func (db *DB) GetMenuHandler(w http.ResponseWriter, r *http.Request) {
	menu, err := db.Menu.Get(r.Context())
	if err != nil {
		http.Error(w, "Failed to fetch menu", http.StatusInternalServerError)
		return
	}

	items := make([]menuItemView, 0, len(menu.Items))
	for _, it := range menu.Items {
		items = append(items, menuItemView{Name: models.Capitalize(it.Name), Price: it.Price})
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"menu": items})
}

func (db *DB) UpdateMenuHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Price    int    `json:"price"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Error decoding JSON: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "Item name is required", http.StatusBadRequest)
		return
	}

	staff, err := db.isStaff(r.Context(), req.Username)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if !staff {
		http.Error(w, "Unauthorized", http.StatusForbidden)
		return
	}

	if err := db.Menu.Upsert(r.Context(), req.Name, req.Price); err != nil {
		http.Error(w, "Failed to update menu", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("✅ Menu updated: %s - ₹%d", models.Capitalize(req.Name), req.Price),
	})
}

func (db *DB) RemoveMenuHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Error decoding JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	staff, err := db.isStaff(r.Context(), req.Username)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if !staff {
		http.Error(w, "Unauthorized", http.StatusForbidden)
		return
	}

	err = db.Menu.Remove(r.Context(), req.Name)
	if err == store.ErrNotFound {
		http.Error(w, fmt.Sprintf("%s not found in menu", models.Capitalize(req.Name)), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "Failed to update menu", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("✅ Removed %s from menu", models.Capitalize(req.Name)),
	})
}

func (db *DB) SetSpecialHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Special  string `json:"special"`
		Username string `json:"username"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Error decoding JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	staff, err := db.isStaff(r.Context(), req.Username)
	if err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	if !staff {
		http.Error(w, "Unauthorized", http.StatusForbidden)
		return
	}

	err = db.Menu.SetSpecial(r.Context(), req.Special)
	if err == store.ErrNotOnMenu {
		http.Error(w, fmt.Sprintf("%s not in menu", models.Capitalize(req.Special)), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "Failed to set daily special", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("⭐ Daily special set to %s", models.Capitalize(req.Special)),
	})
}

func (db *DB) GetSpecialHandler(w http.ResponseWriter, r *http.Request) {
	menu, err := db.Menu.Get(r.Context())
	if err != nil {
		http.Error(w, "Failed to fetch menu", http.StatusInternalServerError)
		return
	}

	entry, recommended, ok := menu.Special()
	if !ok {
		http.Error(w, "Menu is empty", http.StatusNotFound)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"special": map[string]interface{}{
			"name":        models.Capitalize(entry.Name),
			"price":       entry.Price,
			"recommended": recommended,
		},
	})
}

func (db *DB) ManageSpecialHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		db.GetSpecialHandler(w, r)
	case http.MethodPost:
		db.SetSpecialHandler(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
