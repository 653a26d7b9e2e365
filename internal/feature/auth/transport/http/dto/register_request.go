// Package dto はauthフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// RegisterReq is the body of POST /auth/register. roleId defaults to Student.
// Company accounts must name their company, Admin accounts their college.
type RegisterReq struct {
	Name        string `json:"name" binding:"required,notblank,max=255"`
	Email       string `json:"email" binding:"required,email,max=255"`
	Password    string `json:"password" binding:"required,min=8,max=72"`
	RoleID      uint   `json:"roleId" binding:"omitempty,oneof=1 2 3"`
	CompanyName string `json:"companyName" binding:"required_if=RoleID 2,max=255"`
	CollegeName string `json:"collegeName" binding:"required_if=RoleID 3,max=255"`
}
