package handler

import "github.com/taitaima2ma2-pixel/lesson-app/internal/service"

// Handler 全ハンドラの集約
type Handler struct {
	Slot       *SlotHandler
	Roster     *RosterHandler
	Request    *RequestHandler
	Allocation *AllocationHandler
	Export     *ExportHandler
}

// NewHandler Handler 集約を生成する
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Slot:       NewSlotHandler(svc.Slot),
		Roster:     NewRosterHandler(svc.Roster),
		Request:    NewRequestHandler(svc.Request),
		Allocation: NewAllocationHandler(svc.Allocation),
		Export:     NewExportHandler(svc.Export),
	}
}
