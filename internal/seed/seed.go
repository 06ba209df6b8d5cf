package seed

import (
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/anxun-security/guard-roster/backend/internal/config"
	"github.com/anxun-security/guard-roster/backend/internal/domain"
	"github.com/anxun-security/guard-roster/backend/internal/repository"
	"github.com/anxun-security/guard-roster/backend/internal/utils"
)

var demoLocations = []*domain.Location{
	{Name: "天河科技园 A 座", Address: "广州市天河区科技园路 1 号", Region: "华南"},
	{Name: "珠江新城写字楼", Address: "广州市天河区珠江东路 88 号", Region: "华南"},
	{Name: "南山软件产业基地", Address: "深圳市南山区学府路 63 号", Region: "华南"},
	{Name: "陆家嘴金融中心", Address: "上海市浦东新区世纪大道 100 号", Region: "华东"},
	{Name: "中关村创业大厦", Address: "北京市海淀区中关村大街 27 号", Region: "华北"},
}

// 常见的保安班次时段
var demoShiftWindows = []struct {
	Name      string
	StartTime string
	EndTime   string
}{
	{"早班", "06:00:00", "14:00:00"},
	{"中班", "14:00:00", "22:00:00"},
	{"夜班", "22:00:00", "06:00:00"}, // 跨天
	{"白班", "08:00:00", "20:00:00"},
}

// SeedDemoData 往数据库里插入一套可以直接演示生成流程的数据：
// 驻点、经理和保安、排班模板以及节假日。
func SeedDemoData(repo *repository.Repository, cfg *config.Config) {
	// 插入驻点
	for _, location := range demoLocations {
		if err := repo.CreateLocation(location); err != nil {
			slog.Error("插入驻点失败", "name", location.Name, "error", err)
			return
		}
	}
	slog.Info("插入驻点完成", "count", len(demoLocations))

	// 插入经理
	managers := make([]*domain.User, 0, 2)
	for i := 0; i < 2; i++ {
		manager, err := utils.GenerateRandomUser(domain.RoleManager, cfg.Seed.User.Password, cfg.Email.UserDomain)
		if err != nil {
			slog.Error("生成随机经理失败", "error", err)
			return
		}
		if err := repo.CreateUser(manager); err != nil {
			slog.Error("插入经理失败", "error", err)
			return
		}
		managers = append(managers, manager)
	}

	// 插入保安
	guardCount := 0
	for i := 0; i < 20; i++ {
		guard, err := utils.GenerateRandomUser(domain.RoleGuard, cfg.Seed.User.Password, cfg.Email.UserDomain)
		if err != nil {
			slog.Error("生成随机保安失败", "error", err)
			continue
		}
		if err := repo.CreateUser(guard); err != nil {
			// 随机用户名可能撞车，跳过即可
			slog.Error("插入保安失败", "error", err)
			continue
		}
		guardCount++
	}
	slog.Info("插入用户完成", "managers", len(managers), "guards", guardCount)

	// 为每个驻点插入排班模板
	templateCount := 0
	for _, location := range demoLocations {
		windows := rand.Intn(2) + 2
		for i := 0; i < windows; i++ {
			window := demoShiftWindows[rand.Intn(len(demoShiftWindows))]
			manager := managers[rand.Intn(len(managers))]

			tpl := &domain.ShiftTemplate{
				Name:          fmt.Sprintf("%s%s", location.Name, window.Name),
				ManagerID:     manager.ID,
				LocationID:    location.ID,
				RepeatType:    domain.RepeatWeekly,
				Weekdays:      utils.GenerateRandomWeekdays(),
				StartTime:     window.StartTime,
				EndTime:       window.EndTime,
				EffectiveFrom: time.Now().AddDate(0, 0, -7),
				MinGuards:     int32(rand.Intn(2) + 1),
				MaxGuards:     int32(rand.Intn(3) + 3),
			}

			if err := repo.CreateShiftTemplate(tpl); err != nil {
				slog.Error("插入排班模板失败", "name", tpl.Name, "error", err)
				continue
			}
			templateCount++
		}
	}
	slog.Info("插入排班模板完成", "count", templateCount)

	// 插入全局节假日
	holidays := []*domain.Holiday{
		{Name: "元旦", StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.Local), EndDate: time.Date(2026, 1, 3, 0, 0, 0, 0, time.Local)},
		{Name: "春节", StartDate: time.Date(2026, 2, 16, 0, 0, 0, 0, time.Local), EndDate: time.Date(2026, 2, 22, 0, 0, 0, 0, time.Local)},
		{Name: "国庆节", StartDate: time.Date(2025, 10, 1, 0, 0, 0, 0, time.Local), EndDate: time.Date(2025, 10, 7, 0, 0, 0, 0, time.Local)},
	}
	for _, holiday := range holidays {
		if err := repo.CreateHoliday(holiday); err != nil {
			slog.Error("插入节假日失败", "name", holiday.Name, "error", err)
			return
		}
	}
	slog.Info("插入节假日完成", "count", len(holidays))

	slog.Info("插入数据完成")
}
