package logic

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/blues/cfp/internal/errs"
	"github.com/blues/cfp/internal/logger"
	"github.com/blues/cfp/internal/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// DraftLogic 草稿活动业务逻辑
type DraftLogic struct {
	db *gorm.DB
}

// NewDraftLogic 创建草稿活动业务逻辑
func NewDraftLogic(db *gorm.DB) *DraftLogic {
	return &DraftLogic{db: db}
}

// SectionPayload 内容段落请求体
type SectionPayload struct {
	Content string         `json:"content"`
	Images  []ImagePayload `json:"images"`
}

// ImagePayload 图片请求体
type ImagePayload struct {
	URL       string `json:"url" binding:"required"`
	Caption   string `json:"caption"`
	SortOrder int    `json:"sort_order"`
}

// AssetPayload 附件请求体
type AssetPayload struct {
	URL      string `json:"url" binding:"required"`
	FileName string `json:"file_name"`
}

// MilestonePayload 里程碑请求体，Id 非零表示更新存量行
type MilestonePayload struct {
	Id           int64         `json:"id"`
	Title        string        `json:"title" binding:"required"`
	Description  string        `json:"description"`
	TargetAmount float64       `json:"target_amount"`
	TargetDate   *time.Time    `json:"target_date"`
	Deliverables string        `json:"deliverables"`
	SortOrder    int           `json:"sort_order"`
	Image        *ImagePayload `json:"image"`
}

// TeamMemberPayload 团队成员请求体
type TeamMemberPayload struct {
	Id        int64         `json:"id"`
	Name      string        `json:"name" binding:"required"`
	Role      string        `json:"role"`
	Email     string        `json:"email"`
	Bio       string        `json:"bio"`
	AvatarURL string        `json:"avatar_url"`
	SortOrder int           `json:"sort_order"`
	Image     *ImagePayload `json:"image"`
}

// RiskPayload 风险披露请求体
type RiskPayload struct {
	Id         int64  `json:"id"`
	Category   string `json:"category"`
	Descriptor string `json:"descriptor" binding:"required"`
	Mitigation string `json:"mitigation"`
}

// DraftPayload 草稿活动请求体
type DraftPayload struct {
	Title         string     `json:"title" binding:"required"`
	Description   string     `json:"description"`
	Category      string     `json:"category"`
	Location      string     `json:"location"`
	Stage         string     `json:"stage"`
	TargetAmount  float64    `json:"target_amount"`
	MinInvestment float64    `json:"min_investment"`
	EndDate       *time.Time `json:"end_date"`

	// 附加字段，序列化进草稿的 Extra 列
	ProjectDuration map[string]interface{} `json:"project_duration"`
	Financials      map[string]interface{} `json:"financials"`

	ProblemStatement *SectionPayload `json:"problem_statement"`
	Solution         *SectionPayload `json:"solution"`
	CoverImage       *ImagePayload   `json:"cover_image"`
	Gallery          []ImagePayload  `json:"gallery"`
	PitchAsset       *AssetPayload   `json:"pitch_asset"`
	BusinessPlan     *AssetPayload   `json:"business_plan"`

	Milestones  []MilestonePayload  `json:"milestones"`
	TeamMembers []TeamMemberPayload `json:"team_members"`
	Risks       []RiskPayload       `json:"risks"`
}

// draftExtra Extra 列的序列化结构
type draftExtra struct {
	ProjectDuration map[string]interface{} `json:"project_duration,omitempty"`
	Financials      map[string]interface{} `json:"financials,omitempty"`
}

// SectionDetail 内容段落响应
type SectionDetail struct {
	Content string                 `json:"content"`
	Images  []model.DraftImageModel `json:"images"`
}

// DraftMilestoneDetail 里程碑响应（含配图）
type DraftMilestoneDetail struct {
	model.DraftMilestoneModel
	Image *model.DraftImageModel `json:"image,omitempty"`
}

// DraftTeamMemberDetail 团队成员响应（含配图）
type DraftTeamMemberDetail struct {
	model.DraftTeamMemberModel
	Image *model.DraftImageModel `json:"image,omitempty"`
}

// DraftDetail 草稿活动完整响应
type DraftDetail struct {
	model.DraftCampaignModel
	ProjectDuration  map[string]interface{}  `json:"project_duration"`
	Financials       map[string]interface{}  `json:"financials"`
	ProblemStatement *SectionDetail          `json:"problem_statement,omitempty"`
	Solution         *SectionDetail          `json:"solution,omitempty"`
	CoverImage       *model.DraftImageModel  `json:"cover_image,omitempty"`
	Gallery          []model.DraftImageModel `json:"gallery"`
	PitchAsset       *model.DraftAssetModel  `json:"pitch_asset,omitempty"`
	BusinessPlan     *model.DraftAssetModel  `json:"business_plan,omitempty"`
	Milestones       []DraftMilestoneDetail  `json:"milestones"`
	TeamMembers      []DraftTeamMemberDetail `json:"team_members"`
	Risks            []model.DraftRiskModel  `json:"risks"`
}

// DraftSummary 草稿活动列表项
type DraftSummary struct {
	Id            int64     `json:"id"`
	Title         string    `json:"title"`
	Category      string    `json:"category"`
	Stage         string    `json:"stage"`
	TargetAmount  float64   `json:"target_amount"`
	CoverImageURL string    `json:"cover_image_url"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Create 创建草稿活动
// 顶层字段与每个出现的子集合一并写入，缺失的子对象对应表保持为空
func (d *DraftLogic) Create(payload DraftPayload, creatorId int64) (*DraftDetail, error) {
	draft := model.DraftCampaignModel{
		Title:         payload.Title,
		Description:   payload.Description,
		Category:      payload.Category,
		Location:      payload.Location,
		Stage:         payload.Stage,
		TargetAmount:  payload.TargetAmount,
		MinInvestment: payload.MinInvestment,
		EndDate:       payload.EndDate,
		CreatorId:     creatorId,
	}

	extra, err := marshalDraftExtra(payload)
	if err != nil {
		return nil, errs.Internal("序列化附加字段失败", err)
	}
	draft.Extra = datatypes.JSON(extra)

	err = d.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&draft).Error; err != nil {
			return err
		}
		return d.writeChildren(tx, draft.Id, payload)
	})
	if err != nil {
		return nil, errs.Internal("创建草稿失败", err)
	}

	return d.GetById(draft.Id, creatorId)
}

// writeChildren 写入全部出现的子集合（创建场景，表为空）
func (d *DraftLogic) writeChildren(tx *gorm.DB, draftId int64, payload DraftPayload) error {
	if payload.ProblemStatement != nil {
		if err := d.writeSection(tx, draftId, model.SectionTypeProblem, *payload.ProblemStatement); err != nil {
			return err
		}
	}
	if payload.Solution != nil {
		if err := d.writeSection(tx, draftId, model.SectionTypeSolution, *payload.Solution); err != nil {
			return err
		}
	}
	if payload.CoverImage != nil {
		if err := d.writeImages(tx, draftId, model.SectionTypeCover, nil, []ImagePayload{*payload.CoverImage}); err != nil {
			return err
		}
	}
	if len(payload.Gallery) > 0 {
		if err := d.writeImages(tx, draftId, model.SectionTypeGallery, nil, payload.Gallery); err != nil {
			return err
		}
	}
	if payload.PitchAsset != nil {
		if err := d.writeAsset(tx, draftId, model.AssetTypePitchDeck, *payload.PitchAsset); err != nil {
			return err
		}
	}
	if payload.BusinessPlan != nil {
		if err := d.writeAsset(tx, draftId, model.AssetTypeBusinessPlan, *payload.BusinessPlan); err != nil {
			return err
		}
	}

	for _, m := range payload.Milestones {
		milestone := model.DraftMilestoneModel{
			DraftId:      draftId,
			Title:        m.Title,
			Description:  m.Description,
			TargetAmount: m.TargetAmount,
			TargetDate:   m.TargetDate,
			Deliverables: m.Deliverables,
			SortOrder:    m.SortOrder,
		}
		if err := tx.Create(&milestone).Error; err != nil {
			return err
		}
		if m.Image != nil {
			if err := d.writeImages(tx, draftId, model.SectionTypeMilestone, &milestone.Id, []ImagePayload{*m.Image}); err != nil {
				return err
			}
		}
	}

	for _, t := range payload.TeamMembers {
		member := model.DraftTeamMemberModel{
			DraftId:   draftId,
			Name:      t.Name,
			Role:      t.Role,
			Email:     t.Email,
			Bio:       t.Bio,
			AvatarURL: t.AvatarURL,
			SortOrder: t.SortOrder,
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		if t.Image != nil {
			if err := d.writeImages(tx, draftId, model.SectionTypeTeamMember, &member.Id, []ImagePayload{*t.Image}); err != nil {
				return err
			}
		}
	}

	for _, r := range payload.Risks {
		risk := model.DraftRiskModel{
			DraftId:    draftId,
			Category:   r.Category,
			Descriptor: r.Descriptor,
			Mitigation: r.Mitigation,
		}
		if err := tx.Create(&risk).Error; err != nil {
			return err
		}
	}

	return nil
}

func (d *DraftLogic) writeSection(tx *gorm.DB, draftId int64, sectionType model.SectionType, payload SectionPayload) error {
	section := model.DraftSectionModel{
		DraftId:     draftId,
		SectionType: sectionType,
		Content:     payload.Content,
	}
	if err := tx.Create(&section).Error; err != nil {
		return err
	}
	return d.writeImages(tx, draftId, sectionType, nil, payload.Images)
}

func (d *DraftLogic) writeImages(tx *gorm.DB, draftId int64, sectionType model.SectionType, relatedId *int64, images []ImagePayload) error {
	for _, img := range images {
		row := model.DraftImageModel{
			DraftId:     draftId,
			SectionType: sectionType,
			RelatedId:   relatedId,
			URL:         img.URL,
			Caption:     img.Caption,
			SortOrder:   img.SortOrder,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
	}
	return nil
}

func (d *DraftLogic) writeAsset(tx *gorm.DB, draftId int64, assetType model.AssetType, payload AssetPayload) error {
	asset := model.DraftAssetModel{
		DraftId:   draftId,
		AssetType: assetType,
		URL:       payload.URL,
		FileName:  payload.FileName,
	}
	return tx.Create(&asset).Error
}

// GetById 获取草稿完整结构
// 草稿仅创建者可见，归属不符按不存在处理
func (d *DraftLogic) GetById(id, userId int64) (*DraftDetail, error) {
	return hydrateDraft(d.db, id, userId)
}

// hydrateDraft 从归一化表重建完整嵌套结构，可在事务内调用
func hydrateDraft(tx *gorm.DB, id, userId int64) (*DraftDetail, error) {
	var draft model.DraftCampaignModel
	if err := tx.First(&draft, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NotFound("草稿不存在")
		}
		return nil, errs.Internal("查询草稿失败", err)
	}
	if draft.CreatorId != userId {
		return nil, errs.NotFound("草稿不存在")
	}

	detail := DraftDetail{
		DraftCampaignModel: draft,
		ProjectDuration:    map[string]interface{}{},
		Financials:         map[string]interface{}{},
		Gallery:            []model.DraftImageModel{},
		Milestones:         []DraftMilestoneDetail{},
		TeamMembers:        []DraftTeamMemberDetail{},
		Risks:              []model.DraftRiskModel{},
	}

	// Extra 列解析失败按空对象处理，不阻断读取
	if len(draft.Extra) > 0 {
		var extra draftExtra
		if err := json.Unmarshal(draft.Extra, &extra); err != nil {
			logger.Warn("Failed to decode extra fields for draft %d: %v", id, err)
		} else {
			if extra.ProjectDuration != nil {
				detail.ProjectDuration = extra.ProjectDuration
			}
			if extra.Financials != nil {
				detail.Financials = extra.Financials
			}
		}
	}

	var sections []model.DraftSectionModel
	if err := tx.Where("draft_id = ?", id).Find(&sections).Error; err != nil {
		return nil, errs.Internal("查询草稿段落失败", err)
	}
	var images []model.DraftImageModel
	if err := tx.Where("draft_id = ?", id).Order("sort_order, id").Find(&images).Error; err != nil {
		return nil, errs.Internal("查询草稿图片失败", err)
	}
	var assets []model.DraftAssetModel
	if err := tx.Where("draft_id = ?", id).Find(&assets).Error; err != nil {
		return nil, errs.Internal("查询草稿附件失败", err)
	}

	// 关联配图按 (段落类型, 关联ID) 索引，里程碑与成员的ID各自独立自增，可能重号
	type relatedKey struct {
		sectionType model.SectionType
		relatedId   int64
	}
	imagesBySection := make(map[model.SectionType][]model.DraftImageModel)
	imagesByRelated := make(map[relatedKey]model.DraftImageModel)
	for _, img := range images {
		if img.RelatedId != nil {
			imagesByRelated[relatedKey{img.SectionType, *img.RelatedId}] = img
			continue
		}
		imagesBySection[img.SectionType] = append(imagesBySection[img.SectionType], img)
	}

	for _, s := range sections {
		sd := &SectionDetail{Content: s.Content, Images: imagesBySection[s.SectionType]}
		if sd.Images == nil {
			sd.Images = []model.DraftImageModel{}
		}
		switch s.SectionType {
		case model.SectionTypeProblem:
			detail.ProblemStatement = sd
		case model.SectionTypeSolution:
			detail.Solution = sd
		}
	}

	if cover := imagesBySection[model.SectionTypeCover]; len(cover) > 0 {
		detail.CoverImage = &cover[0]
	}
	if gallery := imagesBySection[model.SectionTypeGallery]; len(gallery) > 0 {
		detail.Gallery = gallery
	}

	for i := range assets {
		switch assets[i].AssetType {
		case model.AssetTypePitchDeck:
			detail.PitchAsset = &assets[i]
		case model.AssetTypeBusinessPlan:
			detail.BusinessPlan = &assets[i]
		}
	}

	var milestones []model.DraftMilestoneModel
	if err := tx.Where("draft_id = ?", id).Order("sort_order, id").Find(&milestones).Error; err != nil {
		return nil, errs.Internal("查询草稿里程碑失败", err)
	}
	for _, m := range milestones {
		md := DraftMilestoneDetail{DraftMilestoneModel: m}
		if img, ok := imagesByRelated[relatedKey{model.SectionTypeMilestone, m.Id}]; ok {
			imgCopy := img
			md.Image = &imgCopy
		}
		detail.Milestones = append(detail.Milestones, md)
	}

	var members []model.DraftTeamMemberModel
	if err := tx.Where("draft_id = ?", id).Order("sort_order, id").Find(&members).Error; err != nil {
		return nil, errs.Internal("查询草稿团队成员失败", err)
	}
	for _, m := range members {
		td := DraftTeamMemberDetail{DraftTeamMemberModel: m}
		if img, ok := imagesByRelated[relatedKey{model.SectionTypeTeamMember, m.Id}]; ok {
			imgCopy := img
			td.Image = &imgCopy
		}
		detail.TeamMembers = append(detail.TeamMembers, td)
	}

	if err := tx.Where("draft_id = ?", id).Find(&detail.Risks).Error; err != nil {
		return nil, errs.Internal("查询草稿风险披露失败", err)
	}

	return &detail, nil
}

// Update 更新草稿
// 标量字段整体覆盖；里程碑、团队成员、风险按 Id 差量调和：
// 命中的存量行原地更新，新增项插入，缺失的存量行删除；
// 图片集合按段落整组替换
func (d *DraftLogic) Update(id, userId int64, payload DraftPayload) (*DraftDetail, error) {
	err := d.db.Transaction(func(tx *gorm.DB) error {
		var draft model.DraftCampaignModel
		if err := tx.First(&draft, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("草稿不存在")
			}
			return errs.Internal("查询草稿失败", err)
		}
		if draft.CreatorId != userId {
			return errs.NotFound("草稿不存在")
		}

		extra, err := marshalDraftExtra(payload)
		if err != nil {
			return errs.Internal("序列化附加字段失败", err)
		}

		updates := map[string]interface{}{
			"title":          payload.Title,
			"description":    payload.Description,
			"category":       payload.Category,
			"location":       payload.Location,
			"stage":          payload.Stage,
			"target_amount":  payload.TargetAmount,
			"min_investment": payload.MinInvestment,
			"end_date":       payload.EndDate,
			"extra":          datatypes.JSON(extra),
		}
		if err := tx.Model(&model.DraftCampaignModel{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return errs.Internal("更新草稿失败", err)
		}

		// 段落与图片整组替换
		if payload.ProblemStatement != nil {
			if err := d.replaceSection(tx, id, model.SectionTypeProblem, *payload.ProblemStatement); err != nil {
				return errs.Internal("更新问题陈述失败", err)
			}
		}
		if payload.Solution != nil {
			if err := d.replaceSection(tx, id, model.SectionTypeSolution, *payload.Solution); err != nil {
				return errs.Internal("更新解决方案失败", err)
			}
		}
		if payload.CoverImage != nil {
			if err := d.replaceImages(tx, id, model.SectionTypeCover, nil, []ImagePayload{*payload.CoverImage}); err != nil {
				return errs.Internal("更新封面失败", err)
			}
		}
		if payload.Gallery != nil {
			if err := d.replaceImages(tx, id, model.SectionTypeGallery, nil, payload.Gallery); err != nil {
				return errs.Internal("更新图集失败", err)
			}
		}
		if payload.PitchAsset != nil {
			if err := d.replaceAsset(tx, id, model.AssetTypePitchDeck, *payload.PitchAsset); err != nil {
				return errs.Internal("更新路演材料失败", err)
			}
		}
		if payload.BusinessPlan != nil {
			if err := d.replaceAsset(tx, id, model.AssetTypeBusinessPlan, *payload.BusinessPlan); err != nil {
				return errs.Internal("更新商业计划书失败", err)
			}
		}

		if err := d.reconcileMilestones(tx, id, payload.Milestones); err != nil {
			return errs.Internal("更新里程碑失败", err)
		}
		if err := d.reconcileTeamMembers(tx, id, payload.TeamMembers); err != nil {
			return errs.Internal("更新团队成员失败", err)
		}
		if err := d.reconcileRisks(tx, id, payload.Risks); err != nil {
			return errs.Internal("更新风险披露失败", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return d.GetById(id, userId)
}

func (d *DraftLogic) replaceSection(tx *gorm.DB, draftId int64, sectionType model.SectionType, payload SectionPayload) error {
	if err := tx.Where("draft_id = ? AND section_type = ?", draftId, sectionType).
		Delete(&model.DraftSectionModel{}).Error; err != nil {
		return err
	}
	if err := tx.Where("draft_id = ? AND section_type = ? AND related_id IS NULL", draftId, sectionType).
		Delete(&model.DraftImageModel{}).Error; err != nil {
		return err
	}
	return d.writeSection(tx, draftId, sectionType, payload)
}

func (d *DraftLogic) replaceImages(tx *gorm.DB, draftId int64, sectionType model.SectionType, relatedId *int64, images []ImagePayload) error {
	query := tx.Where("draft_id = ? AND section_type = ?", draftId, sectionType)
	if relatedId == nil {
		query = query.Where("related_id IS NULL")
	} else {
		query = query.Where("related_id = ?", *relatedId)
	}
	if err := query.Delete(&model.DraftImageModel{}).Error; err != nil {
		return err
	}
	return d.writeImages(tx, draftId, sectionType, relatedId, images)
}

func (d *DraftLogic) replaceAsset(tx *gorm.DB, draftId int64, assetType model.AssetType, payload AssetPayload) error {
	if err := tx.Where("draft_id = ? AND asset_type = ?", draftId, assetType).
		Delete(&model.DraftAssetModel{}).Error; err != nil {
		return err
	}
	return d.writeAsset(tx, draftId, assetType, payload)
}

// reconcileMilestones 里程碑差量调和
func (d *DraftLogic) reconcileMilestones(tx *gorm.DB, draftId int64, incoming []MilestonePayload) error {
	var existing []model.DraftMilestoneModel
	if err := tx.Where("draft_id = ?", draftId).Find(&existing).Error; err != nil {
		return err
	}
	existingIds := make(map[int64]bool, len(existing))
	for _, m := range existing {
		existingIds[m.Id] = true
	}

	kept := make([]int64, 0, len(incoming))
	for _, m := range incoming {
		if m.Id != 0 && existingIds[m.Id] {
			updates := map[string]interface{}{
				"title":         m.Title,
				"description":   m.Description,
				"target_amount": m.TargetAmount,
				"target_date":   m.TargetDate,
				"deliverables":  m.Deliverables,
				"sort_order":    m.SortOrder,
			}
			if err := tx.Model(&model.DraftMilestoneModel{}).
				Where("id = ? AND draft_id = ?", m.Id, draftId).
				Updates(updates).Error; err != nil {
				return err
			}
			kept = append(kept, m.Id)
			if m.Image != nil {
				id := m.Id
				if err := d.replaceImages(tx, draftId, model.SectionTypeMilestone, &id, []ImagePayload{*m.Image}); err != nil {
					return err
				}
			}
			continue
		}

		milestone := model.DraftMilestoneModel{
			DraftId:      draftId,
			Title:        m.Title,
			Description:  m.Description,
			TargetAmount: m.TargetAmount,
			TargetDate:   m.TargetDate,
			Deliverables: m.Deliverables,
			SortOrder:    m.SortOrder,
		}
		if err := tx.Create(&milestone).Error; err != nil {
			return err
		}
		kept = append(kept, milestone.Id)
		if m.Image != nil {
			if err := d.writeImages(tx, draftId, model.SectionTypeMilestone, &milestone.Id, []ImagePayload{*m.Image}); err != nil {
				return err
			}
		}
	}

	// 未出现在请求中的存量行删除，连同配图
	query := tx.Where("draft_id = ?", draftId)
	imgQuery := tx.Where("draft_id = ? AND section_type = ?", draftId, model.SectionTypeMilestone)
	if len(kept) > 0 {
		query = query.Where("id NOT IN ?", kept)
		imgQuery = imgQuery.Where("related_id NOT IN ?", kept)
	}
	if err := query.Delete(&model.DraftMilestoneModel{}).Error; err != nil {
		return err
	}
	return imgQuery.Delete(&model.DraftImageModel{}).Error
}

// reconcileTeamMembers 团队成员差量调和
func (d *DraftLogic) reconcileTeamMembers(tx *gorm.DB, draftId int64, incoming []TeamMemberPayload) error {
	var existing []model.DraftTeamMemberModel
	if err := tx.Where("draft_id = ?", draftId).Find(&existing).Error; err != nil {
		return err
	}
	existingIds := make(map[int64]bool, len(existing))
	for _, m := range existing {
		existingIds[m.Id] = true
	}

	kept := make([]int64, 0, len(incoming))
	for _, t := range incoming {
		if t.Id != 0 && existingIds[t.Id] {
			updates := map[string]interface{}{
				"name":       t.Name,
				"role":       t.Role,
				"email":      t.Email,
				"bio":        t.Bio,
				"avatar_url": t.AvatarURL,
				"sort_order": t.SortOrder,
			}
			if err := tx.Model(&model.DraftTeamMemberModel{}).
				Where("id = ? AND draft_id = ?", t.Id, draftId).
				Updates(updates).Error; err != nil {
				return err
			}
			kept = append(kept, t.Id)
			if t.Image != nil {
				id := t.Id
				if err := d.replaceImages(tx, draftId, model.SectionTypeTeamMember, &id, []ImagePayload{*t.Image}); err != nil {
					return err
				}
			}
			continue
		}

		member := model.DraftTeamMemberModel{
			DraftId:   draftId,
			Name:      t.Name,
			Role:      t.Role,
			Email:     t.Email,
			Bio:       t.Bio,
			AvatarURL: t.AvatarURL,
			SortOrder: t.SortOrder,
		}
		if err := tx.Create(&member).Error; err != nil {
			return err
		}
		kept = append(kept, member.Id)
		if t.Image != nil {
			if err := d.writeImages(tx, draftId, model.SectionTypeTeamMember, &member.Id, []ImagePayload{*t.Image}); err != nil {
				return err
			}
		}
	}

	query := tx.Where("draft_id = ?", draftId)
	imgQuery := tx.Where("draft_id = ? AND section_type = ?", draftId, model.SectionTypeTeamMember)
	if len(kept) > 0 {
		query = query.Where("id NOT IN ?", kept)
		imgQuery = imgQuery.Where("related_id NOT IN ?", kept)
	}
	if err := query.Delete(&model.DraftTeamMemberModel{}).Error; err != nil {
		return err
	}
	return imgQuery.Delete(&model.DraftImageModel{}).Error
}

// reconcileRisks 风险披露差量调和
func (d *DraftLogic) reconcileRisks(tx *gorm.DB, draftId int64, incoming []RiskPayload) error {
	var existing []model.DraftRiskModel
	if err := tx.Where("draft_id = ?", draftId).Find(&existing).Error; err != nil {
		return err
	}
	existingIds := make(map[int64]bool, len(existing))
	for _, r := range existing {
		existingIds[r.Id] = true
	}

	kept := make([]int64, 0, len(incoming))
	for _, r := range incoming {
		if r.Id != 0 && existingIds[r.Id] {
			updates := map[string]interface{}{
				"category":   r.Category,
				"descriptor": r.Descriptor,
				"mitigation": r.Mitigation,
			}
			if err := tx.Model(&model.DraftRiskModel{}).
				Where("id = ? AND draft_id = ?", r.Id, draftId).
				Updates(updates).Error; err != nil {
				return err
			}
			kept = append(kept, r.Id)
			continue
		}

		risk := model.DraftRiskModel{
			DraftId:    draftId,
			Category:   r.Category,
			Descriptor: r.Descriptor,
			Mitigation: r.Mitigation,
		}
		if err := tx.Create(&risk).Error; err != nil {
			return err
		}
		kept = append(kept, risk.Id)
	}

	query := tx.Where("draft_id = ?", draftId)
	if len(kept) > 0 {
		query = query.Where("id NOT IN ?", kept)
	}
	return query.Delete(&model.DraftRiskModel{}).Error
}

// GetByUserId 获取用户的草稿列表，按最近更新排序
// 列表不做子集合水合，仅带封面图
func (d *DraftLogic) GetByUserId(userId int64) ([]DraftSummary, error) {
	var drafts []model.DraftCampaignModel
	if err := d.db.Where("creator_id = ?", userId).
		Order("updated_at DESC").
		Find(&drafts).Error; err != nil {
		return nil, errs.Internal("查询草稿列表失败", err)
	}

	summaries := make([]DraftSummary, 0, len(drafts))
	for _, draft := range drafts {
		summary := DraftSummary{
			Id:           draft.Id,
			Title:        draft.Title,
			Category:     draft.Category,
			Stage:        draft.Stage,
			TargetAmount: draft.TargetAmount,
			CreatedAt:    draft.CreatedAt,
			UpdatedAt:    draft.UpdatedAt,
		}
		var cover model.DraftImageModel
		err := d.db.Where("draft_id = ? AND section_type = ?", draft.Id, model.SectionTypeCover).
			Order("sort_order, id").
			First(&cover).Error
		if err == nil {
			summary.CoverImageURL = cover.URL
		}
		summaries = append(summaries, summary)
	}

	return summaries, nil
}

// Delete 删除草稿及全部子表数据，单事务执行
func (d *DraftLogic) Delete(id, userId int64) error {
	return d.db.Transaction(func(tx *gorm.DB) error {
		var draft model.DraftCampaignModel
		if err := tx.First(&draft, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errs.NotFound("草稿不存在")
			}
			return errs.Internal("查询草稿失败", err)
		}
		if draft.CreatorId != userId {
			return errs.NotFound("草稿不存在")
		}
		if err := deleteDraftTx(tx, id); err != nil {
			return errs.Internal("删除草稿失败", err)
		}
		return nil
	})
}

// deleteDraftTx 在事务内级联删除草稿，发布工作流复用
func deleteDraftTx(tx *gorm.DB, id int64) error {
	children := []interface{}{
		&model.DraftSectionModel{},
		&model.DraftImageModel{},
		&model.DraftAssetModel{},
		&model.DraftMilestoneModel{},
		&model.DraftTeamMemberModel{},
		&model.DraftRiskModel{},
	}
	for _, child := range children {
		if err := tx.Where("draft_id = ?", id).Delete(child).Error; err != nil {
			return err
		}
	}
	return tx.Delete(&model.DraftCampaignModel{}, id).Error
}

func marshalDraftExtra(payload DraftPayload) ([]byte, error) {
	if payload.ProjectDuration == nil && payload.Financials == nil {
		return nil, nil
	}
	return json.Marshal(draftExtra{
		ProjectDuration: payload.ProjectDuration,
		Financials:      payload.Financials,
	})
}
