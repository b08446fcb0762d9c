package httpapi

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/avadhootsavle/hackispiration-hackathon/internal/report"
)

// maxUploadBytes 导入文件上限 10MB
const maxUploadBytes = 10 << 20

func (a *APIHandler) ExportInventory(w http.ResponseWriter, r *http.Request) {
	doc, err := a.Mirror.State(r.Context())
	if err != nil {
		a.internal(w, "export inventory", err)
		return
	}
	data, err := report.ExportInventory(doc.Inventory)
	if err != nil {
		a.internal(w, "render inventory workbook", err)
		return
	}
	w.Header().Set("Content-Type", report.ContentType)
	w.Header().Set("Content-Disposition", "attachment; filename="+report.Filename("inventory", time.Now().UTC().Format("2006-01-02")))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (a *APIHandler) ImportHospitals(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("failed to parse form"))
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail("file not found in request"))
		return
	}
	defer file.Close()

	hospitals, err := report.ParseHospitals(file)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, Fail(err.Error()))
		return
	}
	n, err := a.Mirror.ImportHospitals(r.Context(), hospitals)
	if err != nil {
		a.internal(w, "import hospitals", err)
		return
	}
	a.Logger.Info("hospitals imported", zap.Int("count", n))
	writeJSON(w, http.StatusOK, Ok(map[string]any{"imported": n}))
}
