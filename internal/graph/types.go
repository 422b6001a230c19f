package graph

import (
	"github.com/graphql-go/graphql"

	"go-shop-api/internal/model"
)

var authModelType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AuthModel",
	Fields: graphql.Fields{
		"access_token":  &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"refresh_token": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var refreshModelType = graphql.NewObject(graphql.ObjectConfig{
	Name: "RefreshModel",
	Fields: graphql.Fields{
		"access_token": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

// UserModel never exposes the password digest.
var userModelType = graphql.NewObject(graphql.ObjectConfig{
	Name: "UserModel",
	Fields: graphql.Fields{
		"id":        &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"email":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"roles":     &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
		"createdAt": &graphql.Field{Type: graphql.DateTime},
		"updatedAt": &graphql.Field{Type: graphql.DateTime},
	},
})

var weekDayEnum = func() *graphql.Enum {
	values := graphql.EnumValueConfigMap{}
	for _, day := range model.WeekDays {
		values[string(day)] = &graphql.EnumValueConfig{Value: string(day)}
	}
	return graphql.NewEnum(graphql.EnumConfig{Name: "WeekDay", Values: values})
}()

var openAtModelType = graphql.NewObject(graphql.ObjectConfig{
	Name: "OpenAtModel",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"weekDayFrom": &graphql.Field{Type: graphql.NewNonNull(weekDayEnum)},
		"weekDayTo":   &graphql.Field{Type: graphql.NewNonNull(weekDayEnum)},
		"timeFrom":    &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
		"timeTo":      &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
	},
})

var socialMediaModelType = graphql.NewObject(graphql.ObjectConfig{
	Name: "SocialMediaModel",
	Fields: graphql.Fields{
		"id":   &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"name": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"link": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

var shopInfoModelType = graphql.NewObject(graphql.ObjectConfig{
	Name: "ShopInfoModel",
	Fields: graphql.Fields{
		"id":          &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"address":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"phoneNumber": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"email":       &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"openAt":      &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(openAtModelType)))},
		"socialMedia": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(socialMediaModelType)))},
	},
})

var auditEntryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AuditEntry",
	Fields: graphql.Fields{
		"id":         &graphql.Field{Type: graphql.NewNonNull(graphql.ID)},
		"action":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"occurredAt": &graphql.Field{Type: graphql.NewNonNull(graphql.DateTime)},
		"actorId":    &graphql.Field{Type: graphql.ID},
		"actorEmail": &graphql.Field{Type: graphql.String},
		"actorIp":    &graphql.Field{Type: graphql.String},
		"status":     &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
		"resource":   &graphql.Field{Type: graphql.String},
		"error":      &graphql.Field{Type: graphql.String},
	},
})

var pageMetaType = graphql.NewObject(graphql.ObjectConfig{
	Name: "PageMeta",
	Fields: graphql.Fields{
		"page":       &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"limit":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"total":      &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
		"totalPages": &graphql.Field{Type: graphql.NewNonNull(graphql.Int)},
	},
})

var auditPageType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AuditPage",
	Fields: graphql.Fields{
		"items": &graphql.Field{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(auditEntryType)))},
		"meta":  &graphql.Field{Type: graphql.NewNonNull(pageMetaType)},
	},
})

var authCreateInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "AuthCreateModel",
	Fields: graphql.InputObjectConfigFieldMap{
		"email":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"password": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

var userCreateInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "UserCreateModel",
	Fields: graphql.InputObjectConfigFieldMap{
		"email":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"password": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"roles":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(graphql.String)))},
	},
})

var userUpdateInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "UserUpdateModel",
	Fields: graphql.InputObjectConfigFieldMap{
		"email":    &graphql.InputObjectFieldConfig{Type: graphql.String},
		"password": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"roles":    &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(graphql.String))},
	},
})

var openAtCreateInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "OpenAtCreateModel",
	Fields: graphql.InputObjectConfigFieldMap{
		"weekDayFrom": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"weekDayTo":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"timeFrom":    &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.DateTime)},
		"timeTo":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.DateTime)},
	},
})

var socialMediaCreateInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "SocialMediaCreateModel",
	Fields: graphql.InputObjectConfigFieldMap{
		"name": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"link": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
	},
})

var shopInfoCreateInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ShopInfoCreateModel",
	Fields: graphql.InputObjectConfigFieldMap{
		"address":     &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"phoneNumber": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"email":       &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.String)},
		"openAt":      &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(openAtCreateInput)))},
		"socialMedia": &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(socialMediaCreateInput)))},
	},
})

var openAtUpdateInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "OpenAtUpdateModel",
	Fields: graphql.InputObjectConfigFieldMap{
		"id":          &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
		"weekDayFrom": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"weekDayTo":   &graphql.InputObjectFieldConfig{Type: graphql.String},
		"timeFrom":    &graphql.InputObjectFieldConfig{Type: graphql.DateTime},
		"timeTo":      &graphql.InputObjectFieldConfig{Type: graphql.DateTime},
	},
})

var socialMediaUpdateInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "SocialMediaUpdateModel",
	Fields: graphql.InputObjectConfigFieldMap{
		"id":   &graphql.InputObjectFieldConfig{Type: graphql.NewNonNull(graphql.ID)},
		"name": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"link": &graphql.InputObjectFieldConfig{Type: graphql.String},
	},
})

var shopInfoUpdateInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ShopInfoUpdateModel",
	Fields: graphql.InputObjectConfigFieldMap{
		"address":     &graphql.InputObjectFieldConfig{Type: graphql.String},
		"phoneNumber": &graphql.InputObjectFieldConfig{Type: graphql.String},
		"email":       &graphql.InputObjectFieldConfig{Type: graphql.String},
		"openAt":      &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(openAtUpdateInput))},
		"socialMedia": &graphql.InputObjectFieldConfig{Type: graphql.NewList(graphql.NewNonNull(socialMediaUpdateInput))},
	},
})
