// Profile HTTP handlers.
//
//   - GET  /profiles          (list, newest first)
//   - POST /profiles          (create)
//   - POST /update-profile    (partial update by phone/user_id)
//   - POST /upload-avatar     (multipart "image", optional "user_id")
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-match-gateway/internal/domain"
	"github.com/tbourn/go-match-gateway/internal/services"
	"github.com/tbourn/go-match-gateway/internal/sysutil"
)

// ProfileBody is the JSON payload of POST /profiles. Phone is accepted as
// an alias of user_id; user ids in this API are phone numbers.
type ProfileBody struct {
	UserID    string `json:"user_id"    example:"9876543210"`
	Phone     string `json:"phone"      example:"9876543210"`
	FullName  string `json:"full_name"  example:"Asha Patel"`
	Email     string `json:"email"      example:"asha@example.com"`
	BirthDate string `json:"birth_date" example:"1995-04-12"`
	AvatarURL string `json:"avatar_url"`
}

// UpdateProfileBody is the JSON payload of POST /update-profile. Absent
// fields are left unchanged.
type UpdateProfileBody struct {
	UserID    string  `json:"user_id"    example:"9876543210"`
	Phone     string  `json:"phone"      example:"9876543210"`
	FullName  *string `json:"full_name"`
	Email     *string `json:"email"`
	BirthDate *string `json:"birth_date"`
	AvatarURL *string `json:"avatar_url"`
}

// UploadAvatarResponse is returned by POST /upload-avatar.
type UploadAvatarResponse struct {
	Success  bool   `json:"success"  example:"true"`
	URL      string `json:"url"      example:"https://cdn.example.com/avatars/avatar_1718000000000.jpg"`
	FileName string `json:"fileName" example:"avatar_1718000000000.jpg"`
}

// ListProfiles godoc
// @ID          listProfiles
// @Summary     List profiles
// @Tags        Profiles
// @Produce     json
// @Success     200  {object}  handlers.DataResponse
// @Router      /profiles [get]
func (h *Handlers) ListProfiles(c *gin.Context) {
	items, err := h.profSvc.List(c.Request.Context())
	if err != nil {
		failErr(c, err)
		return
	}
	okData(c, items)
}

// CreateProfile godoc
// @ID          createProfile
// @Summary     Create a profile
// @Tags        Profiles
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.ProfileBody  true  "Profile"
// @Success     200  {object}  handlers.MessageDataResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Missing user id"
// @Failure     409  {object}  handlers.ErrorResponse  "Profile exists"
// @Router      /profiles [post]
func (h *Handlers) CreateProfile(c *gin.Context) {
	var body ProfileBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid profile payload")
		return
	}
	p, err := h.profSvc.Create(c.Request.Context(), domain.Profile{
		UserID:    sysutil.FirstNonEmpty(body.UserID, body.Phone),
		FullName:  body.FullName,
		Email:     body.Email,
		BirthDate: body.BirthDate,
		AvatarURL: body.AvatarURL,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, MessageDataResponse{Success: true, Message: "Profile Saved", Data: p})
}

// UpdateProfile godoc
// @ID          updateProfile
// @Summary     Update a profile
// @Tags        Profiles
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.UpdateProfileBody  true  "Fields to change"
// @Success     200  {object}  handlers.DataResponse
// @Failure     400  {object}  handlers.ErrorResponse  "phone required"
// @Failure     404  {object}  handlers.ErrorResponse  "Profile not found"
// @Router      /update-profile [post]
func (h *Handlers) UpdateProfile(c *gin.Context) {
	var body UpdateProfileBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid profile payload")
		return
	}
	uid := sysutil.FirstNonEmpty(body.Phone, body.UserID)
	if uid == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "phone required")
		return
	}
	p, err := h.profSvc.Update(c.Request.Context(), uid, services.ProfilePatch{
		FullName:  body.FullName,
		Email:     body.Email,
		BirthDate: body.BirthDate,
		AvatarURL: body.AvatarURL,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	okData(c, p)
}

// UploadAvatar godoc
// @ID          uploadAvatar
// @Summary     Upload an avatar image
// @Description Stores the image in object storage and returns its public URL.
// @Description When user_id is given the profile's avatar_url is updated too.
// @Tags        Profiles
// @Accept      multipart/form-data
// @Produce     json
// @Param       image    formData  file    true   "Avatar image"
// @Param       user_id  formData  string  false  "Profile to update"
// @Success     200  {object}  handlers.UploadAvatarResponse
// @Failure     400  {object}  handlers.ErrorResponse  "image file required"
// @Failure     503  {object}  handlers.ErrorResponse  "Storage not configured"
// @Router      /upload-avatar [post]
func (h *Handlers) UploadAvatar(c *gin.Context) {
	fh := formFile(c, "image", "image file required")
	if fh == nil {
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "image file unreadable")
		return
	}
	defer f.Close()

	res, err := h.profSvc.UploadAvatar(c.Request.Context(), services.AvatarUpload{
		UserID:      sysutil.FirstNonEmpty(c.PostForm("user_id"), c.PostForm("phone")),
		FileName:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Size:        fh.Size,
		Body:        f,
	})
	if err != nil {
		failErr(c, err)
		return
	}
	ok(c, UploadAvatarResponse{Success: true, URL: res.URL, FileName: res.FileName})
}
