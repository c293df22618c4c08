package sdk

import (
	"github.com/EpicStep/discord-integration-go/presence"
)

// The functions below are the targets of the C callable trampolines. Their
// parameters are raw register values, so enums are narrowed to 32 bits.

func onResult(data, result uintptr) uintptr {
	v, ok := callbacks.take(data)
	if !ok {
		return 0
	}

	comp, ok := v.(*completion)
	if !ok {
		return 0
	}

	comp.core.forgetCompletion(data)

	if comp.done != nil {
		comp.done(Result(int32(result)))
	}

	return 0
}

func onLog(data, level, message uintptr) uintptr {
	v, ok := callbacks.lookup(data)
	if !ok {
		return 0
	}

	if hook, ok := v.(LogHook); ok && hook != nil {
		hook(LogLevel(int32(level)), readCString(message))
	}

	return 0
}

func onActivityJoin(data, secret uintptr) uintptr {
	if c := lookupCore(data); c != nil {
		c.dispatchJoin(readCString(secret))
	}

	return 0
}

func onActivitySpectate(data, secret uintptr) uintptr {
	if c := lookupCore(data); c != nil {
		c.dispatchSpectate(readCString(secret))
	}

	return 0
}

func onActivityJoinRequest(data, user uintptr) uintptr {
	c := lookupCore(data)
	if c == nil {
		return 0
	}

	u, err := DecodeUser(readBytes(user, UserSize))
	if err != nil {
		c.logger.Debug().Err(err).Msg("Dropped join request with unreadable user")
		return 0
	}

	c.dispatchJoinRequest(u)

	return 0
}

func onActivityInvite(data, action, user, activity uintptr) uintptr {
	c := lookupCore(data)
	if c == nil {
		return 0
	}

	u, err := DecodeUser(readBytes(user, UserSize))
	if err != nil {
		c.logger.Debug().Err(err).Msg("Dropped invite with unreadable user")
		return 0
	}

	var a presence.Activity

	if activity != 0 {
		a, err = DecodeActivity(readBytes(activity, ActivitySize))
		if err != nil {
			c.logger.Debug().Err(err).Msg("Dropped invite with unreadable activity")
			return 0
		}
	}

	c.dispatchInvite(ActivityActionType(int32(action)), u, a)

	return 0
}

func lookupCore(data uintptr) *Core {
	v, ok := callbacks.lookup(data)
	if !ok {
		return nil
	}

	c, _ := v.(*Core)

	return c
}
