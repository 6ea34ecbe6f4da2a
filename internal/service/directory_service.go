package service

import (
	"context"
	"fmt"
	"io"

	"irma-verse/internal/model"
	"irma-verse/internal/repository"
	"irma-verse/pkg/apperr"

	"github.com/xuri/excelize/v2"
)

// RosterSheet 导出名册的工作表名
const RosterSheet = "Anggota"

var rosterHeader = []interface{}{"Name", "Role", "Class", "Email"}

// DirectoryService 成员与指导老师目录（只读）
type DirectoryService struct {
	users *repository.UserRepository
}

func NewDirectoryService(users *repository.UserRepository) *DirectoryService {
	return &DirectoryService{users: users}
}

// ListMembers 除指导老师外的全部用户，按姓名排序
func (s *DirectoryService) ListMembers(ctx context.Context) ([]model.UserSummary, error) {
	users, err := s.users.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	return model.Summaries(users), nil
}

// ListInstructors 指导老师，按姓名排序
func (s *DirectoryService) ListInstructors(ctx context.Context) ([]model.UserSummary, error) {
	users, err := s.users.ListByRole(ctx, model.RoleInstructor)
	if err != nil {
		return nil, err
	}
	return model.Summaries(users), nil
}

// ExportMembers 将成员名册写为XLSX
func (s *DirectoryService) ExportMembers(ctx context.Context, w io.Writer) error {
	users, err := s.users.ListMembers(ctx)
	if err != nil {
		return err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", RosterSheet); err != nil {
		return apperr.Internal(err, "failed to build roster")
	}
	if err := f.SetSheetRow(RosterSheet, "A1", &rosterHeader); err != nil {
		return apperr.Internal(err, "failed to build roster")
	}
	for i, u := range users {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return apperr.Internal(err, "failed to build roster")
		}
		row := []interface{}{u.Name, u.Role, u.Class, u.Email}
		if err := f.SetSheetRow(RosterSheet, cell, &row); err != nil {
			return apperr.Internal(err, "failed to build roster")
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return apperr.Internal(fmt.Errorf("write roster: %w", err), "failed to write roster")
	}
	return nil
}
